package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/steezeapp/steeze-backend/internal/models"
)

// ErrItemNotFound возвращается, когда вещь не найдена или принадлежит
// другому пользователю.
var ErrItemNotFound = errors.New("wardrobe item not found")

// WardrobeRepository отвечает за таблицу wardrobe_items.
type WardrobeRepository struct {
	db *sqlx.DB
}

// NewWardrobeRepository создаёт экземпляр репозитория.
func NewWardrobeRepository(db *sqlx.DB) *WardrobeRepository {
	return &WardrobeRepository{db: db}
}

// Create сохраняет новую вещь.
func (r *WardrobeRepository) Create(ctx context.Context, item *models.WardrobeItem) error {
	query := `
		INSERT INTO wardrobe_items (user_id, type, style_tags, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		item.UserID, item.Type, pq.Array(item.StyleTags), item.ImageURL,
	).Scan(&item.ID, &item.CreatedAt); err != nil {
		return fmt.Errorf("wardrobe repository: create %w", err)
	}

	return nil
}

// GetByID возвращает вещь пользователя. Чужие вещи неотличимы от
// несуществующих.
func (r *WardrobeRepository) GetByID(ctx context.Context, itemID, userID uuid.UUID) (*models.WardrobeItem, error) {
	query := `
		SELECT id, user_id, type, style_tags, image_url, created_at
		FROM wardrobe_items
		WHERE id = $1 AND user_id = $2
	`

	item, err := scanItem(r.db.QueryRowxContext(ctx, query, itemID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("wardrobe repository: get by id %w", err)
	}

	return item, nil
}

// ListByUser возвращает вещи пользователя с фильтрами и пагинацией.
// Это общий листинг гардероба; подбор кандидатов для образа идёт через
// FindCandidates без пагинации.
func (r *WardrobeRepository) ListByUser(ctx context.Context, userID uuid.UUID, itemType, tag string, limit, offset int) ([]models.WardrobeItem, error) {
	query := `
		SELECT id, user_id, type, style_tags, image_url, created_at
		FROM wardrobe_items
		WHERE user_id = $1
			AND ($2 = '' OR type = $2)
			AND ($3 = '' OR $3 = ANY(style_tags))
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`

	rows, err := r.db.QueryxContext(ctx, query, userID, itemType, tag, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("wardrobe repository: list by user %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// FindCandidates возвращает пул кандидатов для генерации образа: все вещи
// пользователя, а при непустом списке тегов — вещи, у которых есть хотя бы
// один из запрошенных тегов (пересечение массивов, логика OR).
func (r *WardrobeRepository) FindCandidates(ctx context.Context, userID uuid.UUID, tags []string) ([]models.WardrobeItem, error) {
	query := `
		SELECT id, user_id, type, style_tags, image_url, created_at
		FROM wardrobe_items
		WHERE user_id = $1
			AND (cardinality($2::text[]) = 0 OR style_tags && $2::text[])
	`

	rows, err := r.db.QueryxContext(ctx, query, userID, pq.Array(tags))
	if err != nil {
		return nil, fmt.Errorf("wardrobe repository: find candidates %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// Update меняет тип и/или теги вещи. nil-поле остаётся без изменений.
func (r *WardrobeRepository) Update(ctx context.Context, itemID, userID uuid.UUID, itemType *string, styleTags []string) (*models.WardrobeItem, error) {
	query := `
		UPDATE wardrobe_items
		SET type = COALESCE($3, type),
			style_tags = COALESCE($4, style_tags)
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, type, style_tags, image_url, created_at
	`

	var tagsArg interface{}
	if styleTags != nil {
		tagsArg = pq.Array(styleTags)
	}

	item, err := scanItem(r.db.QueryRowxContext(ctx, query, itemID, userID, itemType, tagsArg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("wardrobe repository: update %w", err)
	}

	return item, nil
}

// Delete удаляет вещь пользователя и возвращает удалённую запись.
// Ссылки на вещь в сохранённых образах не трогаются.
func (r *WardrobeRepository) Delete(ctx context.Context, itemID, userID uuid.UUID) (*models.WardrobeItem, error) {
	query := `
		DELETE FROM wardrobe_items
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, type, style_tags, image_url, created_at
	`

	item, err := scanItem(r.db.QueryRowxContext(ctx, query, itemID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("wardrobe repository: delete %w", err)
	}

	return item, nil
}

// rowScanner покрывает *sqlx.Row и *sqlx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanItem читает одну строку wardrobe_items.
func scanItem(row rowScanner) (*models.WardrobeItem, error) {
	var item models.WardrobeItem
	var tags pq.StringArray

	if err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.Type,
		&tags,
		&item.ImageURL,
		&item.CreatedAt,
	); err != nil {
		return nil, err
	}

	item.StyleTags = []string(tags)
	return &item, nil
}

// collectItems читает все строки результата.
func collectItems(rows *sqlx.Rows) ([]models.WardrobeItem, error) {
	items := []models.WardrobeItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("wardrobe repository: scan %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("wardrobe repository: iterate %w", err)
	}

	return items, nil
}
