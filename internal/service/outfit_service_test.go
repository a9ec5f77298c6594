package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/steezeapp/steeze-backend/internal/models"
	"github.com/steezeapp/steeze-backend/internal/repository"
	"github.com/steezeapp/steeze-backend/internal/weather"
)

// mockWardrobeFinder отдаёт кандидатов по тегам с OR-семантикой.
type mockWardrobeFinder struct {
	items   []models.WardrobeItem
	fetches int
	err     error
}

func (m *mockWardrobeFinder) FindCandidates(ctx context.Context, userID uuid.UUID, tags []string) ([]models.WardrobeItem, error) {
	m.fetches++
	if m.err != nil {
		return nil, m.err
	}

	var result []models.WardrobeItem
	for _, item := range m.items {
		if item.UserID != userID {
			continue
		}
		if len(tags) == 0 {
			result = append(result, item)
			continue
		}
		for _, tag := range tags {
			if containsTag(item.StyleTags, tag) {
				result = append(result, item)
				break
			}
		}
	}
	return result, nil
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// mockOutfitStore хранит образы в памяти.
type mockOutfitStore struct {
	outfits   map[uuid.UUID]*models.Outfit
	wardrobe  *mockWardrobeFinder
	createErr error
	creates   int
	resolves  int
}

func newMockOutfitStore(wardrobe *mockWardrobeFinder) *mockOutfitStore {
	return &mockOutfitStore{
		outfits:  make(map[uuid.UUID]*models.Outfit),
		wardrobe: wardrobe,
	}
}

func (m *mockOutfitStore) Create(ctx context.Context, outfit *models.Outfit) error {
	m.creates++
	if m.createErr != nil {
		return m.createErr
	}
	outfit.ID = uuid.New()
	stored := *outfit
	m.outfits[outfit.ID] = &stored
	return nil
}

func (m *mockOutfitStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Outfit, error) {
	var result []models.Outfit
	for _, o := range m.outfits {
		if o.UserID == userID {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (m *mockOutfitStore) Update(ctx context.Context, outfitID, userID uuid.UUID, mood *string, tags []string) (*models.Outfit, error) {
	o, ok := m.outfits[outfitID]
	if !ok || o.UserID != userID {
		return nil, repository.ErrOutfitNotFound
	}
	if mood != nil {
		o.Mood = mood
	}
	if tags != nil {
		o.Tags = tags
	}
	updated := *o
	return &updated, nil
}

func (m *mockOutfitStore) Delete(ctx context.Context, outfitID, userID uuid.UUID) error {
	o, ok := m.outfits[outfitID]
	if !ok || o.UserID != userID {
		return repository.ErrOutfitNotFound
	}
	delete(m.outfits, outfitID)
	return nil
}

func (m *mockOutfitStore) ResolveItems(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]models.WardrobeItem, error) {
	m.resolves++
	byID := make(map[uuid.UUID]models.WardrobeItem)
	for _, item := range m.wardrobe.items {
		if item.UserID == userID {
			byID[item.ID] = item
		}
	}

	result := make([]models.WardrobeItem, 0, len(ids))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			result = append(result, item)
		}
	}
	return result, nil
}

// mockWeatherSource возвращает фиксированную погоду или ошибку.
type mockWeatherSource struct {
	info  *weather.Info
	err   error
	calls int
}

func (m *mockWeatherSource) ByCoordinates(ctx context.Context, lat, lon float64) (*weather.Info, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.info, nil
}

func tagged(userID uuid.UUID, itemType string, tags ...string) models.WardrobeItem {
	return models.WardrobeItem{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      itemType,
		StyleTags: tags,
	}
}

func newTestOutfitService(wardrobe *mockWardrobeFinder, store *mockOutfitStore, weatherSrc WeatherSource) *OutfitService {
	return NewOutfitService(wardrobe, store, weatherSrc, NewOutfitSelector(rand.New(rand.NewSource(1))))
}

func TestOutfitService_Generate(t *testing.T) {
	userID := uuid.New()
	wardrobe := &mockWardrobeFinder{items: []models.WardrobeItem{
		tagged(userID, models.ItemTypeShirt, "casual"),
		tagged(userID, models.ItemTypePants, "casual"),
		tagged(userID, models.ItemTypeJacket, "casual"),
		tagged(userID, models.ItemTypeShoes, "casual"),
		tagged(userID, models.ItemTypeShirt, "sport"),
	}}
	store := newMockOutfitStore(wardrobe)
	service := newTestOutfitService(wardrobe, store, nil)

	res, err := service.Generate(context.Background(), userID, GenerateInput{
		StyleTags: []string{"casual"},
		Mood:      "уверенный",
	})
	if err != nil {
		t.Fatalf("generate вернул ошибку: %v", err)
	}

	if len(res.Outfit.ItemIDs) != 4 {
		t.Fatalf("ожидалось 4 вещи в образе, получили %d", len(res.Outfit.ItemIDs))
	}
	if res.Outfit.Mood == nil || *res.Outfit.Mood != "уверенный" {
		t.Fatalf("настроение должно сохраняться в образе")
	}
	if res.Outfit.Weather != nil {
		t.Fatalf("без координат погодная метка не ставится")
	}
	if len(res.Outfit.Items) != 4 {
		t.Fatalf("образ должен возвращаться с вещами")
	}
	if store.creates != 1 {
		t.Fatalf("образ должен сохраняться ровно один раз")
	}

	// Вещь с тегом sport не проходит фильтр casual.
	for _, item := range res.Outfit.Items {
		if !containsTag(item.StyleTags, "casual") {
			t.Fatalf("в образ попала вещь вне фильтра: %v", item.StyleTags)
		}
	}
}

func TestOutfitService_GenerateNoCandidates(t *testing.T) {
	userID := uuid.New()
	wardrobe := &mockWardrobeFinder{items: []models.WardrobeItem{
		tagged(userID, models.ItemTypeShirt, "formal"),
	}}
	store := newMockOutfitStore(wardrobe)
	service := newTestOutfitService(wardrobe, store, nil)

	_, err := service.Generate(context.Background(), userID, GenerateInput{
		StyleTags: []string{"sport"},
	})
	if !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("ожидался ErrNoCandidates, получили %v", err)
	}
	if store.creates != 0 {
		t.Fatalf("пустой результат не должен сохраняться")
	}
}

func TestOutfitService_GenerateTagOrSemantics(t *testing.T) {
	userID := uuid.New()
	wardrobe := &mockWardrobeFinder{items: []models.WardrobeItem{
		tagged(userID, models.ItemTypeShirt, "casual"),
		tagged(userID, models.ItemTypePants, "sport"),
		tagged(userID, models.ItemTypeShoes, "formal"),
	}}
	store := newMockOutfitStore(wardrobe)
	service := newTestOutfitService(wardrobe, store, nil)

	// Достаточно совпадения по любому из тегов.
	res, err := service.Generate(context.Background(), userID, GenerateInput{
		StyleTags: []string{"casual", "sport"},
	})
	if err != nil {
		t.Fatalf("generate вернул ошибку: %v", err)
	}
	if len(res.Outfit.ItemIDs) != 2 {
		t.Fatalf("ожидалось 2 вещи (casual и sport), получили %d", len(res.Outfit.ItemIDs))
	}
}

func TestOutfitService_GenerateOwnershipIsolation(t *testing.T) {
	userID := uuid.New()
	otherID := uuid.New()
	wardrobe := &mockWardrobeFinder{items: []models.WardrobeItem{
		tagged(otherID, models.ItemTypeShirt, "casual"),
		tagged(otherID, models.ItemTypePants, "casual"),
	}}
	store := newMockOutfitStore(wardrobe)
	service := newTestOutfitService(wardrobe, store, nil)

	_, err := service.Generate(context.Background(), userID, GenerateInput{})
	if !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("чужие вещи не должны попадать в выборку: %v", err)
	}
}

func TestOutfitService_GenerateWithWeather(t *testing.T) {
	userID := uuid.New()
	wardrobe := &mockWardrobeFinder{items: []models.WardrobeItem{
		tagged(userID, models.ItemTypeShirt),
		tagged(userID, models.ItemTypePants),
	}}
	store := newMockOutfitStore(wardrobe)
	weatherSrc := &mockWeatherSource{info: &weather.Info{Temperature: 5, Condition: "clouds"}}
	service := newTestOutfitService(wardrobe, store, weatherSrc)

	lat, lon := 55.75, 37.62
	res, err := service.Generate(context.Background(), userID, GenerateInput{Lat: &lat, Lon: &lon})
	if err != nil {
		t.Fatalf("generate вернул ошибку: %v", err)
	}

	if weatherSrc.calls != 1 {
		t.Fatalf("погода должна запрашиваться один раз, вызовов: %d", weatherSrc.calls)
	}
	if res.Outfit.Weather == nil || *res.Outfit.Weather != string(weather.BucketCold) {
		t.Fatalf("ожидалась метка cold, получили %v", res.Outfit.Weather)
	}
	if res.WeatherInfo == nil || res.WeatherInfo.Temperature != 5 {
		t.Fatalf("информация о погоде должна возвращаться клиенту")
	}
}

func TestOutfitService_GenerateWeatherFailureDegrades(t *testing.T) {
	userID := uuid.New()
	wardrobe := &mockWardrobeFinder{items: []models.WardrobeItem{
		tagged(userID, models.ItemTypeShirt),
	}}
	store := newMockOutfitStore(wardrobe)
	weatherSrc := &mockWeatherSource{err: errors.New("timeout")}
	service := newTestOutfitService(wardrobe, store, weatherSrc)

	lat, lon := 55.75, 37.62
	res, err := service.Generate(context.Background(), userID, GenerateInput{Lat: &lat, Lon: &lon})
	if err != nil {
		t.Fatalf("недоступность погоды не должна ломать генерацию: %v", err)
	}
	if res.Outfit.Weather != nil {
		t.Fatalf("при ошибке погоды метка не ставится")
	}
	if res.WeatherInfo != nil {
		t.Fatalf("при ошибке погоды информация не возвращается")
	}
	if store.creates != 1 {
		t.Fatalf("образ всё равно должен сохраниться")
	}
}

func TestOutfitService_GeneratePersistenceFailure(t *testing.T) {
	userID := uuid.New()
	wardrobe := &mockWardrobeFinder{items: []models.WardrobeItem{
		tagged(userID, models.ItemTypeShirt),
	}}
	store := newMockOutfitStore(wardrobe)
	store.createErr = errors.New("база недоступна")
	service := newTestOutfitService(wardrobe, store, nil)

	_, err := service.Generate(context.Background(), userID, GenerateInput{})
	if err == nil {
		t.Fatalf("ошибка сохранения должна возвращаться вызывающему")
	}
	if len(store.outfits) != 0 {
		t.Fatalf("при ошибке сохранения образов быть не должно")
	}
}

func TestOutfitService_ListHydratesAndSkipsDeleted(t *testing.T) {
	userID := uuid.New()
	shirt := tagged(userID, models.ItemTypeShirt)
	pants := tagged(userID, models.ItemTypePants)
	wardrobe := &mockWardrobeFinder{items: []models.WardrobeItem{shirt, pants}}
	store := newMockOutfitStore(wardrobe)
	service := newTestOutfitService(wardrobe, store, nil)

	deletedID := uuid.New()
	outfitID := uuid.New()
	store.outfits[outfitID] = &models.Outfit{
		ID:      outfitID,
		UserID:  userID,
		ItemIDs: []uuid.UUID{shirt.ID, deletedID, pants.ID},
	}

	outfits, err := service.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("list вернул ошибку: %v", err)
	}
	if len(outfits) != 1 {
		t.Fatalf("ожидался один образ, получили %d", len(outfits))
	}

	// Идентификаторы сохраняются полностью, вещи — только существующие.
	if len(outfits[0].ItemIDs) != 3 {
		t.Fatalf("список идентификаторов не должен редактироваться")
	}
	if len(outfits[0].Items) != 2 {
		t.Fatalf("удалённая вещь должна пропускаться при гидрации, получили %d", len(outfits[0].Items))
	}
}

func TestOutfitService_ListBatchesHydration(t *testing.T) {
	userID := uuid.New()
	shirt := tagged(userID, models.ItemTypeShirt)
	pants := tagged(userID, models.ItemTypePants)
	shoes := tagged(userID, models.ItemTypeShoes)
	wardrobe := &mockWardrobeFinder{items: []models.WardrobeItem{shirt, pants, shoes}}
	store := newMockOutfitStore(wardrobe)
	service := newTestOutfitService(wardrobe, store, nil)

	first := uuid.New()
	second := uuid.New()
	third := uuid.New()
	store.outfits[first] = &models.Outfit{ID: first, UserID: userID, ItemIDs: []uuid.UUID{shirt.ID, pants.ID}}
	store.outfits[second] = &models.Outfit{ID: second, UserID: userID, ItemIDs: []uuid.UUID{shirt.ID, shoes.ID}}
	store.outfits[third] = &models.Outfit{ID: third, UserID: userID, ItemIDs: []uuid.UUID{pants.ID}}

	outfits, err := service.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("list вернул ошибку: %v", err)
	}
	if len(outfits) != 3 {
		t.Fatalf("ожидалось 3 образа, получили %d", len(outfits))
	}

	// Один запрос гидрации на весь список, а не по запросу на образ.
	if store.resolves != 1 {
		t.Fatalf("ожидался один вызов гидрации, получили %d", store.resolves)
	}

	for _, o := range outfits {
		if len(o.Items) != len(o.ItemIDs) {
			t.Fatalf("образ %s должен получить все свои вещи: %d из %d", o.ID, len(o.Items), len(o.ItemIDs))
		}
	}
}

func TestOutfitService_UpdateKeepsItems(t *testing.T) {
	userID := uuid.New()
	shirt := tagged(userID, models.ItemTypeShirt, "casual")
	wardrobe := &mockWardrobeFinder{items: []models.WardrobeItem{shirt}}
	store := newMockOutfitStore(wardrobe)
	service := newTestOutfitService(wardrobe, store, nil)

	outfitID := uuid.New()
	store.outfits[outfitID] = &models.Outfit{
		ID:      outfitID,
		UserID:  userID,
		ItemIDs: []uuid.UUID{shirt.ID},
		Tags:    []string{"casual"},
	}

	mood := "дерзкий"
	updated, err := service.Update(context.Background(), userID, outfitID, UpdateInput{
		Mood: &mood,
		Tags: []string{"formal"},
	})
	if err != nil {
		t.Fatalf("update вернул ошибку: %v", err)
	}

	// Состав не пересобирается, даже если новые теги ему не соответствуют.
	if len(updated.ItemIDs) != 1 || updated.ItemIDs[0] != shirt.ID {
		t.Fatalf("состав образа не должен меняться при обновлении тегов")
	}
	if updated.Mood == nil || *updated.Mood != "дерзкий" {
		t.Fatalf("настроение должно обновиться")
	}
}

func TestOutfitService_DeleteNotFound(t *testing.T) {
	userID := uuid.New()
	wardrobe := &mockWardrobeFinder{}
	store := newMockOutfitStore(wardrobe)
	service := newTestOutfitService(wardrobe, store, nil)

	err := service.Delete(context.Background(), userID, uuid.New())
	if !errors.Is(err, repository.ErrOutfitNotFound) {
		t.Fatalf("ожидался ErrOutfitNotFound, получили %v", err)
	}
}
