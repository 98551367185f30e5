package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"campusmate/internal/config"
	"campusmate/internal/model"
	mysqlClient "campusmate/internal/platform/mysql"
	rabbitmqClient "campusmate/internal/platform/rabbitmq"
	redisClient "campusmate/internal/platform/redis"
	"campusmate/internal/rag"
	"campusmate/internal/repository"
	"campusmate/internal/worker"
)

type App struct {
	Config     *config.Config
	MySQL      *gorm.DB
	Redis      *redis.Client
	MQConn     *amqp.Connection
	ChunkStore *rag.Store
	QuizWorker *worker.QuizPersistWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.User{}, &model.Assignment{}, &model.QuizHistory{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	historyRepo := repository.NewQuizHistoryRepository(mysqlDB)
	quizWorker := worker.NewQuizPersistWorker(mqConn, historyRepo, cfg.RabbitMQ.QuizPersistQueue)
	if err := quizWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start quiz persist worker failed: %w", err)
	}

	return &App{
		Config:     cfg,
		MySQL:      mysqlDB,
		Redis:      redisCli,
		MQConn:     mqConn,
		ChunkStore: rag.NewStore(),
		QuizWorker: quizWorker,
		StartedAt:  time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.QuizWorker != nil {
		a.QuizWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
