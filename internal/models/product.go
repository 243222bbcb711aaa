package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a classified listing. Messages may reference one by ID.
type Product struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	OwnerID   string    `gorm:"index" json:"ownerId"`
	Title     string    `json:"title"`
	Slug      string    `gorm:"uniqueIndex" json:"slug"`
	MainImage string    `json:"mainImage"`
	Price     int64     `json:"price"` // minor units
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

// ProductSnippet is attached to a conversation whose last message refers to a listing.
type ProductSnippet struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	MainImage string `json:"mainImage"`
}

func (p *Product) Snippet() ProductSnippet {
	return ProductSnippet{ID: p.ID, Title: p.Title, Slug: p.Slug, MainImage: p.MainImage}
}
