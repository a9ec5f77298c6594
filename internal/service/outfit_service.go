package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/steezeapp/steeze-backend/internal/logger"
	"github.com/steezeapp/steeze-backend/internal/models"
	"github.com/steezeapp/steeze-backend/internal/weather"
)

// ErrNoCandidates возвращается, когда под фильтр не попала ни одна вещь.
// Для пользователя это «ничего не нашлось», а не ошибка сервера.
var ErrNoCandidates = errors.New("no wardrobe items match the criteria")

// WardrobeFinder отдаёт пул кандидатов для генерации образа.
type WardrobeFinder interface {
	FindCandidates(ctx context.Context, userID uuid.UUID, tags []string) ([]models.WardrobeItem, error)
}

// OutfitStore описывает зависимости OutfitService от слоя хранилища.
type OutfitStore interface {
	Create(ctx context.Context, outfit *models.Outfit) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Outfit, error)
	Update(ctx context.Context, outfitID, userID uuid.UUID, mood *string, tags []string) (*models.Outfit, error)
	Delete(ctx context.Context, outfitID, userID uuid.UUID) error
	ResolveItems(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]models.WardrobeItem, error)
}

// WeatherSource запрашивает погоду по координатам.
type WeatherSource interface {
	ByCoordinates(ctx context.Context, lat, lon float64) (*weather.Info, error)
}

// OutfitService собирает образы: фильтр гардероба, подбор вещей,
// погодный контекст и сохранение результата.
type OutfitService struct {
	wardrobe WardrobeFinder
	outfits  OutfitStore
	weather  WeatherSource
	selector *OutfitSelector
}

// NewOutfitService создаёт сервис генерации образов.
func NewOutfitService(wardrobe WardrobeFinder, outfits OutfitStore, weatherSrc WeatherSource, selector *OutfitSelector) *OutfitService {
	return &OutfitService{
		wardrobe: wardrobe,
		outfits:  outfits,
		weather:  weatherSrc,
		selector: selector,
	}
}

// GenerateInput содержит параметры генерации образа.
type GenerateInput struct {
	StyleTags []string
	Mood      string
	Lat       *float64
	Lon       *float64
}

// GenerateResult — сохранённый образ с гидрированными вещами и погодой,
// если её удалось получить.
type GenerateResult struct {
	Outfit      *models.Outfit `json:"outfit"`
	WeatherInfo *weather.Info  `json:"weather_info,omitempty"`
}

// UpdateInput содержит изменяемые поля образа.
type UpdateInput struct {
	Mood *string
	Tags []string
}

// Generate собирает и сохраняет новый образ. Погода и выборка кандидатов
// идут параллельно: подбор вещей от погоды не зависит, но обе операции
// должны завершиться до записи. Недоступность погоды не ошибка — образ
// сохраняется без погодной метки.
func (s *OutfitService) Generate(ctx context.Context, userID uuid.UUID, in GenerateInput) (*GenerateResult, error) {
	fetchWeather := in.Lat != nil && in.Lon != nil && s.weather != nil

	weatherCh := make(chan *weather.Info, 1)
	if fetchWeather {
		lat, lon := *in.Lat, *in.Lon
		go func() {
			info, err := s.weather.ByCoordinates(ctx, lat, lon)
			if err != nil {
				if logger.Log != nil {
					logger.Log.WithFields(map[string]interface{}{
						"user_id": userID,
						"error":   err.Error(),
					}).Warn("outfit service: погода недоступна, генерируем без неё")
				}
				weatherCh <- nil
				return
			}
			weatherCh <- info
		}()
	}

	tags := in.StyleTags
	if tags == nil {
		tags = []string{}
	}

	candidates, err := s.wardrobe.FindCandidates(ctx, userID, tags)
	if err != nil {
		return nil, fmt.Errorf("outfit service: выборка кандидатов: %w", err)
	}

	var info *weather.Info
	if fetchWeather {
		info = <-weatherCh
	}

	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	selected := s.selector.Select(candidates)

	itemIDs := make([]uuid.UUID, len(selected))
	for i, item := range selected {
		itemIDs[i] = item.ID
	}

	outfit := &models.Outfit{
		UserID:  userID,
		ItemIDs: itemIDs,
		Tags:    tags,
	}
	if in.Mood != "" {
		mood := in.Mood
		outfit.Mood = &mood
	}
	if info != nil {
		bucket := string(weather.Classify(info.Temperature, info.Condition))
		outfit.Weather = &bucket
	}

	if err := s.outfits.Create(ctx, outfit); err != nil {
		return nil, fmt.Errorf("outfit service: сохранение образа: %w", err)
	}

	// Вещи уже на руках, отдельная гидрация не нужна.
	outfit.Items = selected

	return &GenerateResult{
		Outfit:      outfit,
		WeatherInfo: info,
	}, nil
}

// List возвращает сохранённые образы пользователя с гидрированными вещами.
// Вещи, удалённые из гардероба после создания образа, пропускаются.
// Гидрация идёт одним запросом на весь список: идентификаторы всех образов
// собираются вместе и раздаются обратно по карте.
func (s *OutfitService) List(ctx context.Context, userID uuid.UUID) ([]models.Outfit, error) {
	outfits, err := s.outfits.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool)
	allIDs := make([]uuid.UUID, 0)
	for i := range outfits {
		for _, id := range outfits[i].ItemIDs {
			if !seen[id] {
				seen[id] = true
				allIDs = append(allIDs, id)
			}
		}
	}

	if len(allIDs) == 0 {
		return outfits, nil
	}

	resolved, err := s.outfits.ResolveItems(ctx, userID, allIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.WardrobeItem, len(resolved))
	for _, item := range resolved {
		byID[item.ID] = item
	}

	for i := range outfits {
		items := make([]models.WardrobeItem, 0, len(outfits[i].ItemIDs))
		for _, id := range outfits[i].ItemIDs {
			if item, ok := byID[id]; ok {
				items = append(items, item)
			}
		}
		outfits[i].Items = items
	}

	return outfits, nil
}

// Update меняет настроение и/или теги образа. Состав вещей не пересобирается,
// даже если новые теги ему не соответствуют.
func (s *OutfitService) Update(ctx context.Context, userID, outfitID uuid.UUID, in UpdateInput) (*models.Outfit, error) {
	outfit, err := s.outfits.Update(ctx, outfitID, userID, in.Mood, in.Tags)
	if err != nil {
		return nil, err
	}

	items, err := s.outfits.ResolveItems(ctx, userID, outfit.ItemIDs)
	if err != nil {
		return nil, err
	}
	outfit.Items = items

	return outfit, nil
}

// Delete удаляет образ пользователя.
func (s *OutfitService) Delete(ctx context.Context, userID, outfitID uuid.UUID) error {
	return s.outfits.Delete(ctx, outfitID, userID)
}
