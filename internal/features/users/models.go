// Package users - хранилище пользователей программы лояльности:
// регистрация, профиль, управление аккаунтами администратором.
// models.go описывает структуры для работы с таблицей usuarios.
package users

import "time"

// Роли пользователей
const (
	RoleCustomer = "cliente"
	RoleAdmin    = "admin"
)

// User представляет пользователя в базе данных.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"nombre"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"rol"`
	Points       int64     `json:"puntos"`                 // Накопленные баллы (не уменьшаются при canje)
	TierID       *int64    `json:"nivel_id,omitempty"`     // Текущий уровень (nil для запасной схемы)
	ReferralCode string    `json:"codigo_referido"`        // Код, которым пользователь приглашает других
	ReferredBy   *int64    `json:"referido_por,omitempty"` // Кто пригласил при регистрации
	CanRedeem    bool      `json:"puede_canjear"`
	Active       bool      `json:"activo"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin сообщает, является ли пользователь администратором.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RegisterInput - данные формы регистрации.
type RegisterInput struct {
	Name         string `json:"nombre"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	ReferralCode string `json:"codigo_referido"`
}

// ListFilter - фильтр для списка пользователей в админке.
type ListFilter struct {
	Search string // Подстрока имени или email
	Role   string
	Limit  int
	Offset int
}

// FlagsUpdate - что админ может переключить у пользователя.
type FlagsUpdate struct {
	Active    *bool `json:"activo"`
	CanRedeem *bool `json:"puede_canjear"`
}
