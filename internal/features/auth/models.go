// Package auth - сессии, вход/выход и защита от подбора пароля.
package auth

import (
	"time"

	"laboratorio3d.cl/rewards/internal/features/users"
)

// Session - запись в таблице sesiones. Токен непрозрачный, хранится как есть.
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// SessionInfo - сессия вместе с полями пользователя, нужными для авторизации.
type SessionInfo struct {
	Session
	Email  string
	Role   string
	Active bool
}

// LoginInput - тело POST /api/auth/login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult - ответ на успешный вход.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *users.User `json:"usuario"`
}
