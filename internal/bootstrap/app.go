package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	cronv3 "github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"gopherchat/internal/config"
	"gopherchat/internal/filestore"
	"gopherchat/internal/mail"
	"gopherchat/internal/model"
	mysqlClient "gopherchat/internal/platform/mysql"
	rabbitmqClient "gopherchat/internal/platform/rabbitmq"
	redisClient "gopherchat/internal/platform/redis"
	"gopherchat/internal/repository"
	"gopherchat/internal/tool"
	"gopherchat/internal/worker"
)

type App struct {
	Config        *config.Config
	MySQL         *gorm.DB
	Redis         *redis.Client
	MQConn        *amqp.Connection
	MessageWorker *worker.MessagePersistWorker
	FileStore     *filestore.Store
	ToolPool      *tool.Pool
	Mailer        *mail.Mailer

	cron *cronv3.Cron

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
	if err := mysqlDB.AutoMigrate(
		&model.User{},
		&model.Chat{},
		&model.Message{},
		&model.Comment{},
		&model.Prompt{},
		&model.PasswordResetToken{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	messageRepo := repository.NewMessageRepository(mysqlDB)
	messageWorker := worker.NewMessagePersistWorker(mqConn, messageRepo, cfg.RabbitMQ.MessagePersistQueue)
	if err := messageWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start message worker failed: %w", err)
	}

	store := filestore.New(filestore.Config{
		Dir:            cfg.Storage.Dir,
		BaseURL:        cfg.App.BaseURL,
		RetentionHours: cfg.Storage.RetentionHours,
		MaxSizeMB:      cfg.Storage.MaxSizeMB,
		AllowedTypes:   cfg.Storage.AllowedTypes,
	})

	servers := make([]tool.ServerConfig, 0, len(cfg.ToolServers))
	for _, s := range cfg.ToolServers {
		servers = append(servers, tool.ServerConfig{
			Name:    s.Name,
			Command: s.Command,
			Args:    s.Args,
			Env:     s.Env,
		})
	}
	toolPool := tool.NewPool(servers)

	app := &App{
		Config:        cfg,
		MySQL:         mysqlDB,
		Redis:         redisCli,
		MQConn:        mqConn,
		MessageWorker: messageWorker,
		FileStore:     store,
		ToolPool:      toolPool,
		Mailer: mail.New(mail.Config{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		}),
		cron:      cronv3.New(),
		StartedAt: time.Now(),
	}

	if _, err := app.cron.AddFunc(cfg.Storage.CleanupCron, func() {
		removed, sweepErr := store.Sweep(time.Now())
		if sweepErr != nil {
			log.Printf("file retention sweep failed: %v", sweepErr)
			return
		}
		if removed > 0 {
			log.Printf("file retention sweep removed %d files", removed)
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule retention sweep failed: %w", err)
	}
	app.cron.Start()

	return app, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.cron != nil {
		a.cron.Stop()
	}
	if a.ToolPool != nil {
		a.ToolPool.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MessageWorker != nil {
		a.MessageWorker.Close()
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
