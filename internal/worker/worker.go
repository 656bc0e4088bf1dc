package worker

import (
	"context"
	"log/slog"

	"github.com/omarsabra/mahfaza/internal/repository"
	"github.com/omarsabra/mahfaza/internal/smtp"
	"github.com/omarsabra/mahfaza/internal/stream"
)

// Worker hosts the background consumers. They run for the lifetime of the
// process and only ever act on already-committed state, so crashing and
// restarting one can at worst delay a notification, never money.
type Worker struct {
	KafkaStream *stream.KafkaStream
	DB          repository.Database
	Mailer      smtp.MailerInterface
	Logger      *slog.Logger
	Ctx         context.Context
}

// notificationGroupID identifies the consumer group that fans committed
// ledger events out to in-app notifications and emails.
const notificationGroupID = "wallet-notification-group"

func New(wk *Worker) *Worker {
	return &Worker{
		KafkaStream: wk.KafkaStream,
		DB:          wk.DB,
		Mailer:      wk.Mailer,
		Logger:      wk.Logger,
		Ctx:         wk.Ctx,
	}
}
