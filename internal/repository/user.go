package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/omarsabra/mahfaza/internal/models"
)

type UserRepository interface {
	Insert(user *models.User, tx Tx) (string, error)
	GetOne(id string) (*models.User, bool, error)
	GetByEmail(email string) (*models.User, bool, error)
	GetByPhoneNumber(phoneNumber string) (*models.User, bool, error)
	GetByEmailOrPhone(identifier string) (*models.User, bool, error)
	CheckIfPhoneNumberExist(phoneNumber string) (bool, error)
	GetAll() ([]models.User, error)
	UpdateLastLogin(id string) error
	UpdatePassword(id, hashedPassword string) error
	ChangeProfilePicture(id, pictureURL string) error
}

type UserRepositoryImpl struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (repo *UserRepositoryImpl) Insert(user *models.User, tx Tx) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO users (first_name, last_name, email, phone_number, hashed_password)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	if tx != nil {
		err := unwrap(tx).QueryRowContext(ctx, query,
			user.FirstName,
			user.LastName,
			user.Email,
			user.PhoneNumber,
			user.HashedPassword,
		).Scan(&id)
		if err != nil {
			return "", err
		}
	} else {
		err := repo.db.GetContext(ctx, &id, query,
			user.FirstName,
			user.LastName,
			user.Email,
			user.PhoneNumber,
			user.HashedPassword,
		)
		if err != nil {
			return "", err
		}
	}

	return id, nil
}

func (repo *UserRepositoryImpl) GetOne(id string) (*models.User, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var user models.User

	query := `SELECT * FROM users WHERE id = $1`

	err := repo.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &user, err == nil, err
}

func (repo *UserRepositoryImpl) GetByEmail(email string) (*models.User, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var user models.User

	query := `SELECT * FROM users WHERE email = $1`

	err := repo.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &user, err == nil, err
}

func (repo *UserRepositoryImpl) GetByPhoneNumber(phoneNumber string) (*models.User, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var user models.User

	query := `SELECT * FROM users WHERE phone_number = $1`

	err := repo.db.GetContext(ctx, &user, query, phoneNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &user, err == nil, err
}

// GetByEmailOrPhone resolves the composite identifier used when picking a
// transfer receiver or money-request counterparty.
func (repo *UserRepositoryImpl) GetByEmailOrPhone(identifier string) (*models.User, bool, error) {
	if strings.Contains(identifier, "@") {
		return repo.GetByEmail(identifier)
	}
	return repo.GetByPhoneNumber(identifier)
}

func (repo *UserRepositoryImpl) CheckIfPhoneNumberExist(phoneNumber string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var exists bool

	query := `SELECT EXISTS(SELECT 1 FROM users WHERE phone_number = $1)`

	err := repo.db.GetContext(ctx, &exists, query, phoneNumber)
	return exists, err
}

func (repo *UserRepositoryImpl) GetAll() ([]models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var users []models.User

	query := `SELECT * FROM users ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &users, query)
	return users, err
}

func (repo *UserRepositoryImpl) UpdateLastLogin(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE users SET last_login_at = $1 WHERE id = $2`

	_, err := repo.db.ExecContext(ctx, query, time.Now(), id)
	return err
}

func (repo *UserRepositoryImpl) UpdatePassword(id, hashedPassword string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE users SET hashed_password = $1 WHERE id = $2`

	_, err := repo.db.ExecContext(ctx, query, hashedPassword, id)
	return err
}

func (repo *UserRepositoryImpl) ChangeProfilePicture(id, pictureURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE users SET profile_picture = $1 WHERE id = $2`

	_, err := repo.db.ExecContext(ctx, query, pictureURL, id)
	return err
}
