package template

import (
	"time"
)

const (
	MaxName        = 100
	MaxDescription = 500
)

// Template is an admin-managed design that advertisements are rendered from
type Template struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image"`
	Category    string    `json:"category,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
