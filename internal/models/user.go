package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a marketplace account as far as messaging needs it.
type User struct {
	ID             string    `gorm:"primaryKey" json:"id"` // UUID
	Name           string    `json:"name"`
	SecondName     string    `json:"secondName"`
	Email          string    `gorm:"uniqueIndex" json:"email"`
	Avatar         string    `json:"avatar"`
	TelegramChatID *int64    `gorm:"index" json:"-"` // linked chat for offline pings
	Language       string    `gorm:"default:en" json:"language"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// BeforeCreate GORM-хук: генерує UUID, якщо ID ще не встановлено.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// DisplayName joins first and second name.
func (u *User) DisplayName() string {
	if u.SecondName == "" {
		return u.Name
	}
	return u.Name + " " + u.SecondName
}

// Snippet is the public part of a profile embedded in conversations.
func (u *User) Snippet() UserSnippet {
	return UserSnippet{ID: u.ID, Name: u.DisplayName(), Email: u.Email, Avatar: u.Avatar}
}

// UserSnippet is what the other side of a conversation sees.
type UserSnippet struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar"`
}
