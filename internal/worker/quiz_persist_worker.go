package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"campusmate/internal/model"
	"campusmate/internal/repository"
)

// QuizPersistWorker consumes quiz results from RabbitMQ and writes them to
// MySQL, keeping the save endpoint off the database's critical path.
type QuizPersistWorker struct {
	conn      *amqp.Connection
	repo      *repository.QuizHistoryRepository
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewQuizPersistWorker(conn *amqp.Connection, repo *repository.QuizHistoryRepository, queueName string) *QuizPersistWorker {
	return &QuizPersistWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
	}
}

func (w *QuizPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var entry model.QuizHistory
				if err := json.Unmarshal(d.Body, &entry); err != nil {
					log.Error().Err(err).Msg("worker decode quiz result failed")
					_ = d.Nack(false, false)
					continue
				}

				if err := w.repo.Create(&entry); err != nil {
					log.Error().Err(err).Uint("user_id", entry.UserID).Msg("worker persist quiz result failed")
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *QuizPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
