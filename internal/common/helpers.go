// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: генерация токенов и кодов, форматирование чисел.
package common

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateSessionToken генерирует криптографически безопасный токен сессии.
func GenerateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("ошибка генерации токена: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateReferralCode создаёт код вида "LAB-1A2B3C4D".
func GenerateReferralCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "LAB-" + strings.ToUpper(raw[:8])
}

// NormalizeReferralCode приводит введённый пользователем код к каноническому виду.
func NormalizeReferralCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeEmail приводит email к нижнему регистру без пробелов.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FormatNumber форматирует число с разделителями тысяч (точками, как принято в Чили).
// Пример: FormatNumber(1200000) → "1.200.000"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s.%03d", FormatNumber(n/1000), n%1000)
}

// FormatPoints возвращает "1 punto" / "1.200 puntos".
func FormatPoints(n int64) string {
	if n == 1 || n == -1 {
		return fmt.Sprintf("%d punto", n)
	}
	return FormatNumber(n) + " puntos"
}
