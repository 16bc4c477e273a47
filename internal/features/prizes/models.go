// Package prizes - каталог призов (premios) и управление им.
package prizes

import "time"

// Prize - приз из каталога.
type Prize struct {
	ID             int64     `json:"id"`
	Name           string    `json:"nombre"`
	Description    string    `json:"descripcion"`
	PointsRequired int64     `json:"puntos_requeridos"`
	Stock          int       `json:"stock"`
	Active         bool      `json:"activo"`
	Image          *string   `json:"imagen,omitempty"` // data URL
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PrizeInput - тело создания приза.
type PrizeInput struct {
	Name           string  `json:"nombre"`
	Description    string  `json:"descripcion"`
	PointsRequired int64   `json:"puntos_requeridos"`
	Stock          int     `json:"stock"`
	Active         *bool   `json:"activo"`
	Image          *string `json:"imagen"`
}

// PrizeUpdate - частичное обновление, nil поля не меняются.
type PrizeUpdate struct {
	Name           *string `json:"nombre"`
	Description    *string `json:"descripcion"`
	PointsRequired *int64  `json:"puntos_requeridos"`
	Stock          *int    `json:"stock"`
	Active         *bool   `json:"activo"`
	Image          *string `json:"imagen"`
}
