package weather

import "strings"

// Bucket — погодная категория, по которой помечается сгенерированный образ.
type Bucket string

const (
	BucketRainy Bucket = "rainy"
	BucketCold  Bucket = "cold"
	BucketHot   Bucket = "hot"
	BucketMild  Bucket = "mild"
)

// Classify сводит сырые погодные данные к одной из категорий.
// Порядок проверок важен: осадки имеют приоритет над температурой.
func Classify(tempC float64, condition string) Bucket {
	cond := strings.ToLower(condition)
	switch {
	case strings.Contains(cond, "rain") || strings.Contains(cond, "drizzle"):
		return BucketRainy
	case tempC <= 10:
		return BucketCold
	case tempC >= 25:
		return BucketHot
	default:
		return BucketMild
	}
}
