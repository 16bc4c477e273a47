// Package points - баланс баллов пользователя и журнал движений (movimientos_puntos).
// Баланс только растёт: canje баллы не списывает.
package points

import "time"

// Причины начисления, записываются в журнал.
const (
	ReasonSignup            = "registro"
	ReasonReceiptApproved   = "comprobante_aprobado"
	ReasonReferralPurchase  = "referido_compra"
	ReasonReferralFirstSale = "referido_primera_compra"
	ReasonAdminAdjustment   = "ajuste_admin"
)

// LedgerEntry - одна запись журнала баллов.
type LedgerEntry struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"usuario_id"`
	Delta       int64     `json:"puntos"`
	Reason      string    `json:"motivo"`
	Description string    `json:"descripcion"`
	ReferenceID *int64    `json:"referencia_id,omitempty"` // ID чека или пользователя-админа
	CreatedAt   time.Time `json:"created_at"`
}

// Credit - параметры начисления.
type Credit struct {
	UserID      int64
	Amount      int64
	Reason      string
	Description string
	ReferenceID *int64
}

// AdjustInput - ручное начисление администратором.
type AdjustInput struct {
	Points int64  `json:"puntos"`
	Note   string `json:"nota"`
}
