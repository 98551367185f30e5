package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"campusmate/internal/model"
)

type QuizResultPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewQuizResultPublisher(conn *amqp.Connection, queueName string) *QuizResultPublisher {
	return &QuizResultPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *QuizResultPublisher) Publish(ctx context.Context, entry model.QuizHistory) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal quiz result payload failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish quiz result failed: %w", err)
	}
	return nil
}
