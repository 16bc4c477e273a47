// Package auth - repository.go работает с таблицами sesiones и intentos_login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"laboratorio3d.cl/rewards/internal/common"
	"laboratorio3d.cl/rewards/internal/db/postgres"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateSession создаёт новую сессию.
func (r *Repository) CreateSession(ctx context.Context, s *Session) error {
	err := postgres.Executor(ctx, r.db).QueryRow(ctx, `
		INSERT INTO sesiones (token, usuario_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, s.Token, s.UserID, s.ExpiresAt).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания сессии: %w", err)
	}
	return nil
}

// GetSession возвращает сессию по токену вместе с ролью и статусом пользователя.
// Истёкшие сессии тоже возвращаются, проверку делает сервис.
func (r *Repository) GetSession(ctx context.Context, token string) (*SessionInfo, error) {
	var s SessionInfo
	err := postgres.Executor(ctx, r.db).QueryRow(ctx, `
		SELECT s.token, s.usuario_id, s.expires_at, s.created_at, u.email, u.rol, u.activo
		FROM sesiones s
		JOIN usuarios u ON u.id = s.usuario_id
		WHERE s.token = $1
	`, token).Scan(&s.Token, &s.UserID, &s.ExpiresAt, &s.CreatedAt, &s.Email, &s.Role, &s.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrUnauthenticated
		}
		return nil, fmt.Errorf("ошибка чтения сессии: %w", err)
	}
	return &s, nil
}

func (r *Repository) DeleteSession(ctx context.Context, token string) error {
	_, err := postgres.Executor(ctx, r.db).Exec(ctx, `DELETE FROM sesiones WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("ошибка удаления сессии: %w", err)
	}
	return nil
}

// DeleteUserSessions удаляет все сессии пользователя и возвращает их токены.
func (r *Repository) DeleteUserSessions(ctx context.Context, userID int64) ([]string, error) {
	rows, err := postgres.Executor(ctx, r.db).Query(ctx,
		`DELETE FROM sesiones WHERE usuario_id = $1 RETURNING token`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка удаления сессий: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("ошибка сканирования токена: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// PurgeExpired удаляет истёкшие сессии.
func (r *Repository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := postgres.Executor(ctx, r.db).Exec(ctx, `DELETE FROM sesiones WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("ошибка очистки сессий: %w", err)
	}
	return tag.RowsAffected(), nil
}

// LogAttempt записывает попытку входа.
func (r *Repository) LogAttempt(ctx context.Context, email string, success bool) error {
	_, err := postgres.Executor(ctx, r.db).Exec(ctx,
		`INSERT INTO intentos_login (email, exito) VALUES ($1, $2)`, email, success)
	if err != nil {
		return fmt.Errorf("ошибка записи попытки входа: %w", err)
	}
	return nil
}

// CountRecentFailures возвращает количество неудачных попыток начиная с since.
func (r *Repository) CountRecentFailures(ctx context.Context, email string, since time.Time) (int, error) {
	var count int
	err := postgres.Executor(ctx, r.db).QueryRow(ctx, `
		SELECT COUNT(*) FROM intentos_login
		WHERE email = $1 AND exito = FALSE AND created_at >= $2
	`, email, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта попыток: %w", err)
	}
	return count, nil
}

// PurgeAttempts удаляет попытки старше before.
func (r *Repository) PurgeAttempts(ctx context.Context, before time.Time) (int64, error) {
	tag, err := postgres.Executor(ctx, r.db).Exec(ctx, `DELETE FROM intentos_login WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("ошибка очистки попыток входа: %w", err)
	}
	return tag.RowsAffected(), nil
}
