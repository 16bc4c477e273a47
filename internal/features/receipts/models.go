// Package receipts - чеки покупок (comprobantes): загрузка клиентом,
// проверка администратором и начисление баллов за одобренные чеки.
package receipts

import (
	"time"

	"github.com/shopspring/decimal"
)

// Состояния чека. Из pendiente чек выходит ровно один раз.
const (
	StatePending  = "pendiente"
	StateApproved = "aprobado"
	StateRejected = "rechazado"
)

// Действия администратора
const (
	ActionApprove = "aprobar"
	ActionReject  = "rechazar"
)

// Receipt - чек в таблице comprobantes.
type Receipt struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"usuario_id"`
	Amount        decimal.Decimal `json:"monto"`
	Description   string          `json:"descripcion"`
	File          string          `json:"archivo,omitempty"` // data URL, в списках не отдаётся
	ProductType   string          `json:"tipo_producto"`
	SerialNumber  *string         `json:"numero_serie,omitempty"`
	ReferrerID    *int64          `json:"referido_por,omitempty"` // Пригласивший, указанный при загрузке
	State         string          `json:"estado"`
	PointsAwarded int64           `json:"puntos_otorgados"`
	AdminNotes    *string         `json:"notas_admin,omitempty"`
	ValidatedBy   *int64          `json:"validado_por,omitempty"`
	ValidatedAt   *time.Time      `json:"validado_en,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SubmitInput - тело POST /api/comprobantes.
type SubmitInput struct {
	Amount       decimal.Decimal `json:"monto"`
	Description  string          `json:"descripcion"`
	File         string          `json:"archivo"`
	ProductType  string          `json:"tipo_producto"`
	SerialNumber *string         `json:"numero_serie"`
	ReferralCode string          `json:"codigo_referido"`
}

// ReviewInput - тело POST /api/admin/comprobantes/{id}/revision.
type ReviewInput struct {
	Action string `json:"accion"`
	Notes  string `json:"notas"`
}

// ReviewResult - итог проверки чека.
type ReviewResult struct {
	Receipt            *Receipt `json:"comprobante"`
	PointsAwarded      int64    `json:"puntos_otorgados"`
	Balance            int64    `json:"puntos_usuario"`
	ReferralBonus      int64    `json:"bono_referido"`
	FirstPurchaseBonus int64    `json:"bono_primera_compra"`
}

// ListFilter - фильтр списка чеков в админке.
type ListFilter struct {
	State  string
	UserID *int64
	Limit  int
	Offset int
}
