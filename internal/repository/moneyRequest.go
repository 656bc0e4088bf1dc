package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/omarsabra/mahfaza/internal/models"
)

type MoneyRequestRepository interface {
	Insert(mr *models.MoneyRequest) (string, error)
	GetOne(id string) (*models.MoneyRequest, bool, error)
	ListSent(userID string) ([]models.MoneyRequest, error)
	ListReceived(userID string) ([]models.MoneyRequest, error)

	// UpdateStatusIfPending flips a pending request to the given status and
	// reports whether the row was still pending. Done as one conditional
	// UPDATE so two concurrent responders cannot both win.
	UpdateStatusIfPending(id, status string, tx Tx) (bool, error)
}

type MoneyRequestRepositoryImpl struct {
	db *sqlx.DB
}

func NewMoneyRequestRepository(db *sqlx.DB) MoneyRequestRepository {
	return &MoneyRequestRepositoryImpl{db: db}
}

func (repo *MoneyRequestRepositoryImpl) Insert(mr *models.MoneyRequest) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		INSERT INTO money_requests (from_user_id, to_user_id, amount, currency)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := repo.db.GetContext(ctx, &id, query,
		mr.FromUserID,
		mr.ToUserID,
		mr.Amount,
		mr.Currency,
	)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (repo *MoneyRequestRepositoryImpl) GetOne(id string) (*models.MoneyRequest, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var mr models.MoneyRequest

	query := `SELECT * FROM money_requests WHERE id = $1`

	err := repo.db.GetContext(ctx, &mr, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &mr, err == nil, err
}

func (repo *MoneyRequestRepositoryImpl) ListSent(userID string) ([]models.MoneyRequest, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var requests []models.MoneyRequest

	query := `SELECT * FROM money_requests WHERE from_user_id = $1 ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &requests, query, userID)
	return requests, err
}

func (repo *MoneyRequestRepositoryImpl) ListReceived(userID string) ([]models.MoneyRequest, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var requests []models.MoneyRequest

	query := `SELECT * FROM money_requests WHERE to_user_id = $1 ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &requests, query, userID)
	return requests, err
}

func (repo *MoneyRequestRepositoryImpl) UpdateStatusIfPending(id, status string, tx Tx) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE money_requests SET status = $1, updated_at = now()
		WHERE id = $2 AND status = 'pending'`

	var res sql.Result
	var err error
	if tx != nil {
		res, err = unwrap(tx).ExecContext(ctx, query, status, id)
	} else {
		res, err = repo.db.ExecContext(ctx, query, status, id)
	}
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}
