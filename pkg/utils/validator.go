package utils

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// validator.go - валидация входных данных HTTP-слоя и конфигурации
//
// Функции:
// - ValidateKeyword: непустой, в пределах длины, без управляющих символов
// - ValidateASIN: ровно 10 буквенно-цифровых символов
// - ValidateAuctionID: непустой идентификатор без управляющих символов
// - ValidateWebhookURL: валидный http(s) URL
// - ValidateAPIKey: непустой ключ минимальной длины

var (
	ErrEmptyValue       = errors.New("value must not be empty")
	ErrTooLong          = errors.New("value exceeds maximum length")
	ErrInvalidASIN      = errors.New("asin must be exactly 10 alphanumeric characters")
	ErrInvalidURL       = errors.New("value is not a valid http(s) url")
	ErrInvalidAPIKey    = errors.New("api key is too short")
	ErrControlCharacter = errors.New("value contains control characters")
)

const (
	maxKeywordLength = 200
	minAPIKeyLength  = 16
)

var asinPattern = regexp.MustCompile(`^[A-Z0-9]{10}$`)

// ValidateKeyword проверяет поисковый запрос перед вставкой в WatchedKeyword.
func ValidateKeyword(keyword string) error {
	trimmed := strings.TrimSpace(keyword)
	if trimmed == "" {
		return ErrEmptyValue
	}
	if len(trimmed) > maxKeywordLength {
		return ErrTooLong
	}
	if containsControlChar(trimmed) {
		return ErrControlCharacter
	}
	return nil
}

// ValidateASIN проверяет формат 10-значного идентификатора маркетплейса.
func ValidateASIN(asin string) error {
	if !asinPattern.MatchString(strings.ToUpper(asin)) {
		return ErrInvalidASIN
	}
	return nil
}

// ValidateAuctionID проверяет, что идентификатор аукциона непустой и состоит
// из печатных символов (формат площадки не документирован, поэтому
// валидация намеренно слабая).
func ValidateAuctionID(id string) error {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return ErrEmptyValue
	}
	if containsControlChar(trimmed) {
		return ErrControlCharacter
	}
	return nil
}

// ValidateWebhookURL проверяет, что значение является абсолютным http(s) URL.
func ValidateWebhookURL(raw string) error {
	if raw == "" {
		return ErrEmptyValue
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidURL
	}
	return nil
}

// ValidateAPIKey проверяет минимальную длину операторского API-ключа.
func ValidateAPIKey(key string) error {
	if len(key) < minAPIKeyLength {
		return ErrInvalidAPIKey
	}
	return nil
}

func containsControlChar(s string) bool {
	for _, r := range s {
		if r < 0x20 && r != '\t' {
			return true
		}
	}
	return false
}
