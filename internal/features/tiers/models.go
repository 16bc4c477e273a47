// Package tiers - уровни лояльности (niveles): Bronce, Plata, Oro и т.д.
// Уровень пользователя определяется накопленными баллами.
package tiers

import "time"

// Tier - уровень программы лояльности.
type Tier struct {
	ID           int64     `json:"id"`
	Name         string    `json:"nombre"`
	MinPoints    int64     `json:"puntos_minimos"`
	Benefits     string    `json:"beneficios"`
	DisplayOrder int       `json:"orden"`
	Active       bool      `json:"activo"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// Progress - текущий уровень и сколько осталось до следующего.
type Progress struct {
	Current      Tier  `json:"nivel_actual"`
	Next         *Tier `json:"siguiente_nivel,omitempty"`
	PointsToNext int64 `json:"puntos_para_siguiente"`
}

// TierInput - данные для создания уровня.
type TierInput struct {
	Name         string `json:"nombre"`
	MinPoints    int64  `json:"puntos_minimos"`
	Benefits     string `json:"beneficios"`
	DisplayOrder int    `json:"orden"`
	Active       *bool  `json:"activo"`
}

// TierUpdate - частичное обновление уровня, nil поля не меняются.
type TierUpdate struct {
	Name         *string `json:"nombre"`
	MinPoints    *int64  `json:"puntos_minimos"`
	Benefits     *string `json:"beneficios"`
	DisplayOrder *int    `json:"orden"`
	Active       *bool   `json:"activo"`
}
