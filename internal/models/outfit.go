package models

import (
	"time"

	"github.com/google/uuid"
)

// Outfit описывает сохранённый образ: ссылки на вещи слабые, вещь может
// быть удалена из гардероба после создания образа.
type Outfit struct {
	ID      uuid.UUID   `db:"id" json:"id"`
	UserID  uuid.UUID   `db:"user_id" json:"user_id"`
	ItemIDs []uuid.UUID `db:"items" json:"item_ids"`
	Mood    *string     `db:"mood" json:"mood,omitempty"`
	Weather *string     `db:"weather" json:"weather,omitempty"`
	Tags    []string    `db:"tags" json:"tags"`

	// Items заполняется при гидрации и содержит только те вещи,
	// которые всё ещё существуют.
	Items []WardrobeItem `db:"-" json:"items,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
