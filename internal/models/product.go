package models

import "time"

// Product represents a catalog entry. The checkout workflow treats the
// catalog as read-only: prices are resolved from here at the instant of
// checkout, never taken from the client.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string    `json:"name" validate:"required,min=1,max=200"`
	Category    string    `json:"category" gorm:"index" validate:"omitempty,max=100"`
	PriceCents  int64     `json:"price_cents" validate:"gte=0"`
	ImageURL    string    `json:"image_url" validate:"omitempty,max=500"`
	Description string    `json:"description" validate:"omitempty,max=2000"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
