// Package storage is the GORM-backed persistence layer: messages, users and
// listings. Every call is bounded by a per-call timeout and failures of the
// underlying database are reported as apperr.Unavailable.
package storage

import (
	"context"
	"time"

	"marketzone/backend/internal/apperr"
	"marketzone/backend/internal/logger"
	"marketzone/backend/internal/models"

	"gorm.io/gorm"
)

// MessageStore is the durable record of direct messages.
type MessageStore interface {
	Insert(ctx context.Context, msg *models.Message) error
	ListBetween(ctx context.Context, a, b string) ([]models.Message, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	CountUnreadFrom(ctx context.Context, fromID, toID string) (int64, error)
	MarkRead(ctx context.Context, fromID, toID string) (int64, error)
	DeleteConversation(ctx context.Context, a, b string) (int64, error)
	ListAllInvolving(ctx context.Context, userID string) ([]models.Message, error)
}

// UserDirectory resolves user ids to profiles.
type UserDirectory interface {
	UserExists(ctx context.Context, id string) (bool, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUsers(ctx context.Context, ids []string) (map[string]models.User, error)
}

// ProductDirectory resolves listing references. A missing listing is (nil, nil).
type ProductDirectory interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

// Storage is everything Service implements.
type Storage interface {
	MessageStore
	UserDirectory
	ProductDirectory

	SaveUser(ctx context.Context, user *models.User) error
	SaveProduct(ctx context.Context, product *models.Product) error
}

const defaultTimeout = 5 * time.Second

type Service struct {
	DB      *gorm.DB
	Timeout time.Duration
	clock   *Clock
}

// NewStorageService Constructor. timeout <= 0 falls back to 5s.
func NewStorageService(db *gorm.DB, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{
		DB:      db,
		Timeout: timeout,
		clock:   NewClock(),
	}
}

// Migrate creates or updates the tables and indexes.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Message{},
	)
}

// db returns a session bound to a context with the per-call deadline.
func (s *Service) db(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	return s.DB.WithContext(ctx), cancel
}

// unavailable logs a database failure and classifies it.
func unavailable(op string, err error) error {
	logger.Error().Err(err).Str("op", op).Msg("storage call failed")
	return apperr.Unavailable(op, err)
}
