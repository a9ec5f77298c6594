package models

import (
	"time"

	"github.com/google/uuid"
)

// Канонические типы вещей, по которым подборщик образов разносит слоты.
// Поле Type свободное: любые другие значения тоже сохраняются.
const (
	ItemTypeShirt  = "shirt"
	ItemTypePants  = "pants"
	ItemTypeJacket = "jacket"
	ItemTypeShoes  = "shoes"
)

// WardrobeItem описывает вещь в гардеробе пользователя.
type WardrobeItem struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Type      string    `db:"type" json:"type"`
	StyleTags []string  `db:"style_tags" json:"style_tags"`
	ImageURL  string    `db:"image_url" json:"image_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
