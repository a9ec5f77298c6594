package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MaxItemTypeLength = 50
	MaxTagLength      = 50
	MaxTagsCount      = 20
	MaxMoodLength     = 100
	MaxLocationLength = 100
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
)

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	local, domain := parts[0], parts[1]
	if len(local) == 0 || len(local) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domain) == 0 || len(domain) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}
	if !emailLocalRegex.MatchString(local) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}
	if !emailDomainRegex.MatchString(domain) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateLength проверяет длину строки в рунах.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateItemType проверяет тип вещи. Тип свободный, ограничиваем только длину.
func ValidateItemType(itemType string) error {
	if err := ValidateNonEmpty("тип вещи", itemType); err != nil {
		return err
	}
	return ValidateLength("тип вещи", itemType, 1, MaxItemTypeLength)
}

// ValidateStyleTags проверяет список тегов стиля.
func ValidateStyleTags(tags []string) error {
	if len(tags) > MaxTagsCount {
		return fmt.Errorf("тегов может быть не более %d", MaxTagsCount)
	}

	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("тег не может быть пустым")
		}
		if err := ValidateLength("тег", tag, 1, MaxTagLength); err != nil {
			return err
		}
	}

	return nil
}

// ValidateMood проверяет метку настроения.
func ValidateMood(mood string) error {
	return ValidateLength("настроение", mood, 0, MaxMoodLength)
}

// SplitTags разбивает строку тегов через запятую, отбрасывая пустые.
// Формат повторяет то, что присылает фронтенд в форме загрузки.
func SplitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}

	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
