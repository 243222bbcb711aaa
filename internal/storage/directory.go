package storage

import (
	"context"
	"errors"

	"marketzone/backend/internal/apperr"
	"marketzone/backend/internal/models"

	"gorm.io/gorm"
)

// SaveUser зберігає користувача (створює або оновлює).
func (s *Service) SaveUser(ctx context.Context, user *models.User) error {
	db, cancel := s.db(ctx)
	defer cancel()

	if err := db.Save(user).Error; err != nil {
		return unavailable("save user", err)
	}
	return nil
}

func (s *Service) UserExists(ctx context.Context, id string) (bool, error) {
	db, cancel := s.db(ctx)
	defer cancel()

	var n int64
	if err := db.Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, unavailable("user exists", err)
	}
	return n > 0, nil
}

// GetUser returns apperr NotFound when there is no such user.
func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	db, cancel := s.db(ctx)
	defer cancel()

	var user models.User
	err := db.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, unavailable("get user", err)
	}
	return &user, nil
}

// GetUsers loads the given users in one query. Unknown ids are absent from the map.
func (s *Service) GetUsers(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	db, cancel := s.db(ctx)
	defer cancel()

	var users []models.User
	if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, unavailable("get users", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (s *Service) SaveProduct(ctx context.Context, product *models.Product) error {
	db, cancel := s.db(ctx)
	defer cancel()

	if err := db.Save(product).Error; err != nil {
		return unavailable("save product", err)
	}
	return nil
}

// GetProduct повертає nil без помилки, якщо оголошення не знайдено.
func (s *Service) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	db, cancel := s.db(ctx)
	defer cancel()

	var p models.Product
	err := db.Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("get product", err)
	}
	return &p, nil
}
