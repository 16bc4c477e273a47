package receipts

import "laboratorio3d.cl/rewards/internal/common"

// Допустимые типы файла чека
var fileTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif", "application/pdf"}

func validateFile(dataURL string, maxBytes int) error {
	return common.ValidateDataURL(dataURL, maxBytes, fileTypes...)
}
