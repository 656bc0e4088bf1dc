package worker

import (
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/omarsabra/mahfaza/internal/ledger"
	"github.com/omarsabra/mahfaza/internal/models"
	"github.com/omarsabra/mahfaza/internal/stream"
)

// NotificationWorker consumes post-commit ledger events, writes the in-app
// notification row and sends the transaction alert email. It never touches
// balances.
func (wk *Worker) NotificationWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: notificationGroupID,
		Topic:   ledger.NotificationTopic,
	})
	if err != nil {
		wk.Logger.Error("notification consumer setup failed", "error", err)
		return
	}

	for {
		select {
		case <-wk.Ctx.Done():
			consumer.Close()
			return
		default:
		}

		event := consumer.Poll(100)
		switch e := event.(type) {
		case *kafka.Message:
			var notif ledger.NotificationEvent
			if err := json.Unmarshal(e.Value, &notif); err != nil {
				wk.Logger.Error("notification event decode failed", "error", err)
				continue
			}
			wk.handleNotification(&notif)
		case kafka.Error:
			wk.Logger.Error("notification consumer error", "error", e)
		}
	}
}

func (wk *Worker) handleNotification(event *ledger.NotificationEvent) {
	_, err := wk.DB.Notification().Insert(&models.Notification{
		UserID: event.UserID,
		Title:  event.Title,
		Body:   event.Body,
		Type:   event.Type,
	})
	if err != nil {
		wk.Logger.Error("notification insert failed", "error", err, "event_id", event.EventID)
		return
	}

	user, found, err := wk.DB.User().GetOne(event.UserID)
	if err != nil || !found {
		wk.Logger.Error("notification user lookup failed", "error", err, "user_id", event.UserID)
		return
	}

	if wk.Mailer == nil {
		return
	}

	data := map[string]any{
		"Name":  user.FirstName,
		"Title": event.Title,
		"Body":  event.Body,
	}
	if err := wk.Mailer.Send(user.Email, data, "transaction-alert.tmpl"); err != nil {
		wk.Logger.Error("notification email failed", "error", err, "user_id", user.ID)
	}
}
