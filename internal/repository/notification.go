package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/omarsabra/mahfaza/internal/models"
)

type NotificationRepository interface {
	Insert(n *models.Notification) (string, error)
	ListByUser(userID string, page, pageSize int) ([]models.Notification, int, error)
	MarkRead(id, userID string) (bool, error)
	UnreadCount(userID string) (int, error)
}

type NotificationRepositoryImpl struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &NotificationRepositoryImpl{db: db}
}

func (repo *NotificationRepositoryImpl) Insert(n *models.Notification) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		INSERT INTO notifications (user_id, title, body, type)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := repo.db.GetContext(ctx, &id, query, n.UserID, n.Title, n.Body, n.Type)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (repo *NotificationRepositoryImpl) ListByUser(userID string, page, pageSize int) ([]models.Notification, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var total int
	if err := repo.db.GetContext(ctx, &total, `SELECT count(*) FROM notifications WHERE user_id = $1`, userID); err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification

	query := `
		SELECT * FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	err := repo.db.SelectContext(ctx, &notifications, query, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (repo *NotificationRepositoryImpl) MarkRead(id, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`

	res, err := repo.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

func (repo *NotificationRepositoryImpl) UnreadCount(userID string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var count int

	query := `SELECT count(*) FROM notifications WHERE user_id = $1 AND read = false`

	err := repo.db.GetContext(ctx, &count, query, userID)
	return count, err
}
