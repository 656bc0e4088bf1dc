package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/omarsabra/mahfaza/internal/models"
)

type FraudLogRepository interface {
	Insert(fl *models.FraudLog) (string, error)
	Recent(within time.Duration) ([]models.FraudLog, error)
}

type FraudLogRepositoryImpl struct {
	db *sqlx.DB
}

func NewFraudLogRepository(db *sqlx.DB) FraudLogRepository {
	return &FraudLogRepositoryImpl{db: db}
}

func (repo *FraudLogRepositoryImpl) Insert(fl *models.FraudLog) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		INSERT INTO fraud_logs (user_id, type, details)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := repo.db.GetContext(ctx, &id, query, fl.UserID, fl.Type, fl.Details)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (repo *FraudLogRepositoryImpl) Recent(within time.Duration) ([]models.FraudLog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var logs []models.FraudLog

	query := `SELECT * FROM fraud_logs WHERE created_at >= $1 ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &logs, query, time.Now().Add(-within))
	return logs, err
}
