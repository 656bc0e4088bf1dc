package mocks

import (
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/omarsabra/mahfaza/internal/models"
	"github.com/omarsabra/mahfaza/internal/repository"
)

type memoryUserRepo struct {
	db *MemoryDatabase
}

func (r *memoryUserRepo) Insert(user *models.User, tx repository.Tx) (string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	id := r.db.nextID()
	stored := *user
	stored.ID = id
	stored.CreatedAt = time.Now()
	if stored.Status == "" {
		stored.Status = models.UserStatusActive
	}
	if stored.Role == "" {
		stored.Role = models.UserRoleCustomer
	}
	r.db.users[id] = stored

	return id, nil
}

func (r *memoryUserRepo) GetOne(id string) (*models.User, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	user, ok := r.db.users[id]
	if !ok {
		return nil, false, nil
	}
	return &user, true, nil
}

func (r *memoryUserRepo) GetByEmail(email string) (*models.User, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, user := range r.db.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, true, nil
		}
	}
	return nil, false, nil
}

func (r *memoryUserRepo) GetByPhoneNumber(phoneNumber string) (*models.User, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, user := range r.db.users {
		if user.PhoneNumber == phoneNumber {
			u := user
			return &u, true, nil
		}
	}
	return nil, false, nil
}

func (r *memoryUserRepo) GetByEmailOrPhone(identifier string) (*models.User, bool, error) {
	if strings.Contains(identifier, "@") {
		return r.GetByEmail(identifier)
	}
	return r.GetByPhoneNumber(identifier)
}

func (r *memoryUserRepo) CheckIfPhoneNumberExist(phoneNumber string) (bool, error) {
	_, found, err := r.GetByPhoneNumber(phoneNumber)
	return found, err
}

func (r *memoryUserRepo) GetAll() ([]models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	users := make([]models.User, 0, len(r.db.users))
	for _, user := range r.db.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *memoryUserRepo) UpdateLastLogin(id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	user, ok := r.db.users[id]
	if !ok {
		return nil
	}
	user.LastLoginAt = sql.NullTime{Time: time.Now(), Valid: true}
	r.db.users[id] = user
	return nil
}

func (r *memoryUserRepo) UpdatePassword(id, hashedPassword string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	user, ok := r.db.users[id]
	if !ok {
		return nil
	}
	user.HashedPassword = hashedPassword
	r.db.users[id] = user
	return nil
}

func (r *memoryUserRepo) ChangeProfilePicture(id, pictureURL string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	user, ok := r.db.users[id]
	if !ok {
		return nil
	}
	user.ProfilePicture = sql.NullString{String: pictureURL, Valid: true}
	r.db.users[id] = user
	return nil
}
