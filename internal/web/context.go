package web

import (
	"context"
)

// Principal - аутентифицированный пользователь текущего запроса.
type Principal struct {
	UserID int64
	Email  string
	Role   string
	Token  string
}

// RoleAdmin - роль администратора.
const RoleAdmin = "admin"

// IsAdmin сообщает, является ли пользователь администратором.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

type principalKey struct{}
type requestIDKey struct{}
type bodyLimitKey struct{}

// WithPrincipal кладёт пользователя в контекст.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom возвращает пользователя из контекста или nil.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

// WithRequestID кладёт id запроса в контекст.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID возвращает id запроса или пустую строку.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithBodyLimit задаёт лимит тела запроса для DecodeJSON.
func WithBodyLimit(ctx context.Context, n int64) context.Context {
	return context.WithValue(ctx, bodyLimitKey{}, n)
}

// BodyLimit возвращает лимит тела запроса из контекста.
func BodyLimit(ctx context.Context) int64 {
	if n, ok := ctx.Value(bodyLimitKey{}).(int64); ok && n > 0 {
		return n
	}
	return defaultBodyBytes
}
