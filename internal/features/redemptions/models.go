// Package redemptions - обмен баллов на призы (canjes), таблица compras.
// Баллы при canje не списываются: требуемые баллы - только порог допуска.
package redemptions

import (
	"time"

	"laboratorio3d.cl/rewards/internal/features/prizes"
)

// Состояния canje
const (
	StatePending   = "pendiente"
	StateApproved  = "aprobado"
	StateRejected  = "rechazado"
	StateDelivered = "entregado"
)

// transitions - разрешённые переходы состояний в админке.
var transitions = map[string][]string{
	StatePending:  {StateApproved, StateRejected},
	StateApproved: {StateDelivered},
}

// Redemption - строка compras.
type Redemption struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"usuario_id"`
	PrizeID        int64     `json:"premio_id"`
	PrizeName      string    `json:"premio_nombre,omitempty"`
	PointsRequired int64     `json:"puntos_requeridos"`
	State          string    `json:"estado"`
	Notes          *string   `json:"notas,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RedeemInput - тело POST /api/canjes.
type RedeemInput struct {
	PrizeID int64 `json:"premio_id"`
}

// RedeemResult - ответ на успешный canje. Balance не меняется.
type RedeemResult struct {
	Redemption *Redemption   `json:"canje"`
	Prize      *prizes.Prize `json:"premio"`
	Balance    int64         `json:"puntos_usuario"`
}

// StateUpdate - тело PATCH /api/admin/canjes/{id}.
type StateUpdate struct {
	State string `json:"estado"`
	Notes string `json:"notas"`
}

// ListFilter - фильтр списка в админке.
type ListFilter struct {
	State  string
	UserID *int64
	Limit  int
	Offset int
}
