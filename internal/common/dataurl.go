package common

import (
	"encoding/base64"
	"net/http"
	"slices"
	"strings"
)

// ValidateDataURL проверяет файл вида "data:image/png;base64,....":
// тип из allowed, корректный base64, размер после декодирования не больше maxBytes
// и содержимое, совпадающее с заявленным типом.
func ValidateDataURL(dataURL string, maxBytes int, allowed ...string) error {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return ErrInvalidFile
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return ErrInvalidFile
	}
	mime, ok := strings.CutSuffix(strings.ToLower(header), ";base64")
	if !ok || !slices.Contains(allowed, mime) {
		return ErrInvalidFile
	}

	// DecodedLen завышает длину не больше чем на 2 байта из-за паддинга
	if base64.StdEncoding.DecodedLen(len(payload)) > maxBytes+2 {
		return ErrFileTooLarge
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(raw) == 0 {
		return ErrInvalidFile
	}
	if len(raw) > maxBytes {
		return ErrFileTooLarge
	}

	if http.DetectContentType(raw) != mime {
		return ErrInvalidFile
	}
	return nil
}
