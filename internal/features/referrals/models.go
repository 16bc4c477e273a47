// Package referrals - реферальная программа.
// Два независимых бонуса пригласившему:
//   - за крупную покупку по коду, указанному в чеке (фиксированный бонус);
//   - за первую одобренную покупку приглашённого при регистрации (по настройкам).
package referrals

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config - единственная строка configuracion_referidos (id = 1).
type Config struct {
	CommissionPercent  decimal.Decimal `json:"porcentaje_comision"`
	FirstPurchaseBonus int64           `json:"bono_primera_compra"` // Если > 0, используется вместо процента
	Active             bool            `json:"activo"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ConfigInput - тело PUT /api/admin/referidos/config.
type ConfigInput struct {
	CommissionPercent  decimal.Decimal `json:"porcentaje_comision"`
	FirstPurchaseBonus int64           `json:"bono_primera_compra"`
	Active             bool            `json:"activo"`
}

// PurchaseReferral - данные одобренного чека для бонуса за крупную покупку.
type PurchaseReferral struct {
	ReceiptID  int64
	UserID     int64  // Владелец чека
	ReferrerID *int64 // Пригласивший, указанный в чеке
	Amount     decimal.Decimal
}

// FirstPurchase - данные одобренного чека для бонуса за первую покупку.
type FirstPurchase struct {
	ReceiptID     int64
	UserID        int64
	ReceiptPoints int64
}
