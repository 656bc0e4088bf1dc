package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/omarsabra/mahfaza/internal/cache"
	"github.com/omarsabra/mahfaza/internal/config"
	"github.com/omarsabra/mahfaza/internal/env"
	"github.com/omarsabra/mahfaza/internal/errHandler"
	"github.com/omarsabra/mahfaza/internal/file"
	"github.com/omarsabra/mahfaza/internal/helper"
	"github.com/omarsabra/mahfaza/internal/ledger"
	"github.com/omarsabra/mahfaza/internal/otp"
	"github.com/omarsabra/mahfaza/internal/repository"
	"github.com/omarsabra/mahfaza/internal/smtp"
	"github.com/omarsabra/mahfaza/internal/stream"
	"github.com/joho/godotenv"
)

// Application holds every long-lived dependency. It is assembled once at
// startup and handed to the route handlers, the middleware and the workers.
type Application struct {
	Config       config.Config
	DB           repository.Database
	Logger       *slog.Logger
	Mailer       *smtp.Mailer
	Cache        *cache.Cache
	Kafka        *stream.KafkaStream
	Ledger       *ledger.Ledger
	Otp          *otp.Engine
	FileUploader *file.FileUploader
	WG           sync.WaitGroup

	errorHandler *errHandler.ErrorHandler
	helper       *helper.HelperRepository
}

func NewApplication(logger *slog.Logger) (*Application, error) {
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", "error", err)
	}

	var cfg config.Config

	// Defaults here are for development only; production values come from
	// the environment.
	cfg.BaseURL = env.GetString("BASE_URL", "http://localhost:4444")
	cfg.HttpPort = env.GetInt("HTTP_PORT", 4444)

	cfg.Db.Dsn = env.GetString("DB_DSN", "user:pass@localhost:5432/mahfaza")
	cfg.Db.Automigrate = env.GetBool("DB_AUTOMIGRATE", true)

	cfg.RedisServer = env.GetString("REDIS_SERVER", "localhost:6379")

	cfg.Jwt.SecretKey = env.GetString("JWT_SECRET_KEY", "ajf5nx3qmp6zquevllxocxqvyz42ypuo")

	// Server errors are only emailed when NOTIFICATIONS_EMAIL is set.
	cfg.Notifications.Email = env.GetString("NOTIFICATIONS_EMAIL", "")

	cfg.Smtp.Host = env.GetString("SMTP_HOST", "example.smtp.host")
	cfg.Smtp.Port = env.GetInt("SMTP_PORT", 25)
	cfg.Smtp.Username = env.GetString("SMTP_USERNAME", "example_username")
	cfg.Smtp.Password = env.GetString("SMTP_PASSWORD", "pa55word")
	cfg.Smtp.From = env.GetString("SMTP_FROM", "Mahfaza <no_reply@example.org>")

	cfg.KafkaServers = env.GetString("KAFKA_SERVERS", "localhost:9092")

	cfg.Bank.ProcessingDelay = env.GetDuration("BANK_PROCESSING_DELAY", 2*time.Second)

	cfg.FileUploader.ApiKey = env.GetString("CLOUDINARY_API_KEY", "")
	cfg.FileUploader.CloudName = env.GetString("CLOUDINARY_CLOUD_NAME", "")
	cfg.FileUploader.ApiSecret = env.GetString("CLOUDINARY_API_SECRET", "")

	db, err := repository.New(cfg.Db.Dsn, cfg.Db.Automigrate)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	mailer, err := smtp.NewMailer(cfg.Smtp.Host, cfg.Smtp.Port, cfg.Smtp.Username, cfg.Smtp.Password, cfg.Smtp.From)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	redisCache := cache.New(cfg.RedisServer, 0)
	kafkaStream := stream.New(cfg.KafkaServers)
	fileUploader := file.New(cfg.FileUploader.CloudName, cfg.FileUploader.ApiKey, cfg.FileUploader.ApiSecret)

	errorHandler := errHandler.New(cfg.Notifications.Email, mailer, logger, &cfg.BaseURL)

	otpEngine := otp.New(db.Otp(), redisCache, mailer, logger)
	walletLedger := ledger.New(db, otpEngine, kafkaStream, logger, cfg.Bank.ProcessingDelay)

	app := &Application{
		Config:       cfg,
		DB:           db,
		Logger:       logger,
		Mailer:       mailer,
		Cache:        redisCache,
		Kafka:        kafkaStream,
		Ledger:       walletLedger,
		Otp:          otpEngine,
		FileUploader: fileUploader,
		errorHandler: errorHandler,
	}
	app.helper = helper.New(&cfg.BaseURL, &app.WG, errorHandler)

	return app, nil
}

// Shutdown releases held connections. Called after the HTTP server has
// drained.
func (app *Application) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		app.WG.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := app.Cache.Close(); err != nil {
		return err
	}
	return app.DB.Close()
}
