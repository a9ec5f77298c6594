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

// ErrOutfitNotFound возвращается, когда образ не найден или принадлежит
// другому пользователю. Эти два случая намеренно не различаются.
var ErrOutfitNotFound = errors.New("outfit not found")

// OutfitRepository отвечает за таблицу outfits.
type OutfitRepository struct {
	db *sqlx.DB
}

// NewOutfitRepository создаёт экземпляр репозитория.
func NewOutfitRepository(db *sqlx.DB) *OutfitRepository {
	return &OutfitRepository{db: db}
}

// Create сохраняет новый образ одним INSERT: либо записывается весь образ
// со всеми ссылками на вещи, либо ничего.
func (r *OutfitRepository) Create(ctx context.Context, outfit *models.Outfit) error {
	query := `
		INSERT INTO outfits (user_id, items, mood, weather, tags)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		outfit.UserID,
		pq.Array(outfit.ItemIDs),
		outfit.Mood,
		outfit.Weather,
		pq.Array(outfit.Tags),
	).Scan(&outfit.ID, &outfit.CreatedAt); err != nil {
		return fmt.Errorf("outfit repository: create %w", err)
	}

	return nil
}

// GetByID возвращает образ пользователя.
func (r *OutfitRepository) GetByID(ctx context.Context, outfitID, userID uuid.UUID) (*models.Outfit, error) {
	query := `
		SELECT id, user_id, items, mood, weather, tags, created_at
		FROM outfits
		WHERE id = $1 AND user_id = $2
	`

	outfit, err := scanOutfit(r.db.QueryRowxContext(ctx, query, outfitID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOutfitNotFound
		}
		return nil, fmt.Errorf("outfit repository: get by id %w", err)
	}

	return outfit, nil
}

// ListByUser возвращает все образы пользователя, новые первыми.
func (r *OutfitRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Outfit, error) {
	query := `
		SELECT id, user_id, items, mood, weather, tags, created_at
		FROM outfits
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("outfit repository: list by user %w", err)
	}
	defer rows.Close()

	outfits := []models.Outfit{}
	for rows.Next() {
		outfit, err := scanOutfit(rows)
		if err != nil {
			return nil, fmt.Errorf("outfit repository: scan %w", err)
		}
		outfits = append(outfits, *outfit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("outfit repository: iterate %w", err)
	}

	return outfits, nil
}

// Update меняет настроение и/или теги образа. Состав вещей после создания
// не меняется, даже если новые теги ему больше не соответствуют.
func (r *OutfitRepository) Update(ctx context.Context, outfitID, userID uuid.UUID, mood *string, tags []string) (*models.Outfit, error) {
	query := `
		UPDATE outfits
		SET mood = COALESCE($3, mood),
			tags = COALESCE($4, tags)
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, items, mood, weather, tags, created_at
	`

	var tagsArg interface{}
	if tags != nil {
		tagsArg = pq.Array(tags)
	}

	outfit, err := scanOutfit(r.db.QueryRowxContext(ctx, query, outfitID, userID, mood, tagsArg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOutfitNotFound
		}
		return nil, fmt.Errorf("outfit repository: update %w", err)
	}

	return outfit, nil
}

// Delete удаляет образ пользователя.
func (r *OutfitRepository) Delete(ctx context.Context, outfitID, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM outfits WHERE id = $1 AND user_id = $2`, outfitID, userID)
	if err != nil {
		return fmt.Errorf("outfit repository: delete %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrOutfitNotFound
	}

	return nil
}

// ResolveItems гидрирует ссылки образа в полные записи вещей. Удалённые
// вещи просто пропускаются, порядок ids сохраняется.
func (r *OutfitRepository) ResolveItems(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]models.WardrobeItem, error) {
	if len(ids) == 0 {
		return []models.WardrobeItem{}, nil
	}

	query := `
		SELECT id, user_id, type, style_tags, image_url, created_at
		FROM wardrobe_items
		WHERE user_id = $1 AND id = ANY($2)
	`

	rows, err := r.db.QueryxContext(ctx, query, userID, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("outfit repository: resolve items %w", err)
	}
	defer rows.Close()

	found, err := collectItems(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.WardrobeItem, len(found))
	for _, item := range found {
		byID[item.ID] = item
	}

	items := make([]models.WardrobeItem, 0, len(ids))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			items = append(items, item)
		}
	}

	return items, nil
}

// scanOutfit читает одну строку outfits.
func scanOutfit(row rowScanner) (*models.Outfit, error) {
	var outfit models.Outfit
	var itemIDs []uuid.UUID
	var tags pq.StringArray

	if err := row.Scan(
		&outfit.ID,
		&outfit.UserID,
		pq.Array(&itemIDs),
		&outfit.Mood,
		&outfit.Weather,
		&tags,
		&outfit.CreatedAt,
	); err != nil {
		return nil, err
	}

	outfit.ItemIDs = itemIDs
	outfit.Tags = []string(tags)
	return &outfit, nil
}
