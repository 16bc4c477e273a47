// Package users - repository.go отвечает за все операции с таблицей usuarios в БД.
package users

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"laboratorio3d.cl/rewards/internal/common"
	"laboratorio3d.cl/rewards/internal/db/postgres"
)

const userColumns = `id, nombre, email, password_hash, rol, puntos, nivel_id, codigo_referido,
	referido_por, puede_canjear, activo, created_at, updated_at`

// Имена уникальных ограничений из миграции.
const (
	constraintEmail        = "usuarios_email_key"
	constraintReferralCode = "usuarios_codigo_referido_key"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) q(ctx context.Context) postgres.Querier {
	return postgres.Executor(ctx, r.db)
}

// Create добавляет пользователя и заполняет ID и временные метки.
// Нарушение уникальности email превращается в common.ErrEmailTaken.
func (r *Repository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO usuarios (nombre, email, password_hash, rol, puntos, codigo_referido, referido_por, puede_canjear, activo)
		VALUES ($1, $2, $3, $4, 0, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.q(ctx).QueryRow(ctx, query,
		u.Name, u.Email, u.PasswordHash, u.Role, u.ReferralCode, u.ReferredBy, u.CanRedeem, u.Active,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err, constraintEmail) {
			return common.ErrEmailTaken
		}
		if postgres.IsUniqueViolation(err, constraintReferralCode) {
			return errReferralCodeCollision
		}
		return fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return nil
}

// GetByID: если не найден - common.ErrUserNotFound.
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM usuarios WHERE id = $1`, id)
}

// LockByID читает пользователя с блокировкой строки до конца транзакции.
// Сериализует параллельные начисления и canje одного пользователя.
func (r *Repository) LockByID(ctx context.Context, id int64) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM usuarios WHERE id = $1 FOR UPDATE`, id)
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM usuarios WHERE email = $1`, common.NormalizeEmail(email))
}

func (r *Repository) GetByReferralCode(ctx context.Context, code string) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM usuarios WHERE codigo_referido = $1`, common.NormalizeReferralCode(code))
}

// List возвращает пользователей по фильтру, новые первыми.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]*User, error) {
	b := sq.Select(userColumns).
		From("usuarios").
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar)

	if f.Search != "" {
		like := "%" + f.Search + "%"
		b = b.Where(sq.Or{sq.ILike{"nombre": like}, sq.ILike{"email": like}})
	}
	if f.Role != "" {
		b = b.Where(sq.Eq{"rol": f.Role})
	}
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		b = b.Offset(uint64(f.Offset))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка построения запроса: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса пользователей: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}

// UpdateFlags меняет только переданные флаги.
func (r *Repository) UpdateFlags(ctx context.Context, id int64, f FlagsUpdate) error {
	b := sq.Update("usuarios").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar)
	if f.Active != nil {
		b = b.Set("activo", *f.Active)
	}
	if f.CanRedeem != nil {
		b = b.Set("puede_canjear", *f.CanRedeem)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("ошибка построения запроса: %w", err)
	}
	tag, err := r.q(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления пользователя: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrUserNotFound
	}
	return nil
}

// SetTier сохраняет текущий уровень пользователя.
func (r *Repository) SetTier(ctx context.Context, userID int64, tierID *int64) error {
	_, err := r.q(ctx).Exec(ctx,
		`UPDATE usuarios SET nivel_id = $2, updated_at = NOW() WHERE id = $1`, userID, tierID)
	if err != nil {
		return fmt.Errorf("ошибка обновления уровня: %w", err)
	}
	return nil
}

func (r *Repository) getOne(ctx context.Context, query string, args ...any) (*User, error) {
	u, err := scanUser(r.q(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка чтения пользователя: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Points, &u.TierID,
		&u.ReferralCode, &u.ReferredBy, &u.CanRedeem, &u.Active, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
