package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"learnpool-client/internal/app"
	"learnpool-client/internal/cache"
	"learnpool-client/internal/config"
	"learnpool-client/internal/model"
	databaseClient "learnpool-client/internal/platform/database"
	rabbitmqClient "learnpool-client/internal/platform/rabbitmq"
	redisClient "learnpool-client/internal/platform/redis"
	"learnpool-client/internal/repository"
	"learnpool-client/internal/worker"
)

// App holds the stub server's shared resources. The report cache and
// message queue are optional in dev so the binary runs with nothing but
// the embedded sqlite file.
type App struct {
	Config       *config.Config
	Log          *logrus.Logger
	DB           *gorm.DB
	Redis        *redis.Client
	MQConn       *amqp.Connection
	AnswerWorker *worker.AnswerWorker
	ReportCache  *cache.ReportCache

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	return NewWithConfig(ctx, cfg)
}

func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	log := NewLogger(cfg.App.Env)

	dsn := cfg.Database.SQLitePath
	if cfg.Database.Driver == "mysql" {
		dsn = cfg.MySQLDSN()
	}
	db, err := databaseClient.New(ctx, cfg.Database.Driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Enrollment{},
		&model.Session{},
		&model.Question{},
		&model.Answer{},
		&model.Citation{},
		&model.AnswerFeedback{},
		&model.Document{},
		&model.SessionDocument{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	a := &App{
		Config:    cfg,
		Log:       log,
		DB:        db,
		StartedAt: time.Now(),
	}

	if !cfg.Redis.DisableReportCache {
		redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		a.Redis = redisCli
		a.ReportCache = cache.NewReportCache(
			redisCli,
			time.Duration(cfg.Redis.ReportTTLSeconds)*time.Second,
			time.Duration(cfg.Redis.DirtyTTLSeconds)*time.Second,
		)
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}
	a.MQConn = mqConn

	answerWorker := worker.NewAnswerWorker(
		mqConn,
		repository.NewAnswerRepository(db),
		repository.NewSessionRepository(db),
		reportCacheOrNil(a.ReportCache),
		cfg.RabbitMQ.AnswerQueue,
		cfg.Answer.ModelName,
		time.Duration(cfg.Answer.DelayMS)*time.Millisecond,
		log,
	)
	if err := answerWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start answer worker failed: %w", err)
	}
	a.AnswerWorker = answerWorker

	return a, nil
}

// reportCacheOrNil avoids handing consumers a typed-nil interface value.
func reportCacheOrNil(c *cache.ReportCache) app.ReportCache {
	if c == nil {
		return nil
	}
	return c
}

func NewLogger(env string) *logrus.Logger {
	log := logrus.New()
	if env == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetLevel(logrus.InfoLevel)
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.AnswerWorker != nil {
		a.AnswerWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
