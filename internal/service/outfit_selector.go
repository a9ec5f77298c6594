package service

import (
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/steezeapp/steeze-backend/internal/models"
)

// MaxOutfitItems — целевой размер образа.
const MaxOutfitItems = 4

// canonicalSlots — порядок слотов при подборе. По одному проходу на слот:
// сначала пытаемся закрыть каждый слот, потом добираем что осталось.
var canonicalSlots = [...]string{
	models.ItemTypeShirt,
	models.ItemTypePants,
	models.ItemTypeJacket,
	models.ItemTypeShoes,
}

// OutfitSelector выбирает вещи для образа из пула кандидатов.
// Источник случайности инжектируется, чтобы тесты могли подменить его
// детерминированным.
type OutfitSelector struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewOutfitSelector создаёт подборщик с заданным источником случайности.
func NewOutfitSelector(rnd *rand.Rand) *OutfitSelector {
	return &OutfitSelector{rnd: rnd}
}

// Select возвращает min(4, len(pool)) вещей без повторов. Пул тасуется
// равномерно (Фишер–Йетс), затем в фиксированном порядке слотов берётся
// первая подходящая вещь каждого канонического типа, остаток добирается
// по порядку перетасовки. Пустой пул — ответственность вызывающего:
// Select на нём просто вернёт пустой срез.
func (s *OutfitSelector) Select(pool []models.WardrobeItem) []models.WardrobeItem {
	shuffled := make([]models.WardrobeItem, len(pool))
	copy(shuffled, pool)

	// rand.Rand не потокобезопасен, а подборщик один на все запросы.
	s.mu.Lock()
	s.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	s.mu.Unlock()

	selected := make([]models.WardrobeItem, 0, MaxOutfitItems)
	picked := make(map[uuid.UUID]bool, MaxOutfitItems)

	// Проход по слотам: максимум одна вещь каждого канонического типа.
	for _, slot := range canonicalSlots {
		for _, item := range shuffled {
			if item.Type == slot && !picked[item.ID] {
				selected = append(selected, item)
				picked[item.ID] = true
				break
			}
		}
	}

	// Добор до четырёх из оставшихся, в порядке перетасовки.
	for _, item := range shuffled {
		if len(selected) >= MaxOutfitItems {
			break
		}
		if !picked[item.ID] {
			selected = append(selected, item)
			picked[item.ID] = true
		}
	}

	return selected
}
