// Package redemptions - repository.go работает с таблицей compras.
package redemptions

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

// Уникальный индекс (usuario_id, premio_id)
const constraintUserPrize = "compras_usuario_premio_key"

const redemptionColumns = `c.id, c.usuario_id, c.premio_id, p.nombre, c.puntos_requeridos, c.estado, c.notas, c.created_at, c.updated_at`

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create вставляет canje. Нарушение уникальности - common.ErrDuplicateRedemption.
func (r *Repository) Create(ctx context.Context, rd *Redemption) error {
	err := postgres.Executor(ctx, r.db).QueryRow(ctx, `
		INSERT INTO compras (usuario_id, premio_id, puntos_requeridos, estado)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, rd.UserID, rd.PrizeID, rd.PointsRequired, rd.State).Scan(&rd.ID, &rd.CreatedAt, &rd.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err, constraintUserPrize) {
			return common.ErrDuplicateRedemption
		}
		return fmt.Errorf("ошибка создания canje: %w", err)
	}
	return nil
}

// Exists проверяет, есть ли уже canje этого приза у пользователя (в любом состоянии).
func (r *Repository) Exists(ctx context.Context, userID, prizeID int64) (bool, error) {
	var exists bool
	err := postgres.Executor(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM compras WHERE usuario_id = $1 AND premio_id = $2)`,
		userID, prizeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки canje: %w", err)
	}
	return exists, nil
}

// LockByID читает canje с блокировкой строки.
func (r *Repository) LockByID(ctx context.Context, id int64) (*Redemption, error) {
	rd, err := scanRedemption(postgres.Executor(ctx, r.db).QueryRow(ctx, `
		SELECT `+redemptionColumns+`
		FROM compras c
		JOIN premios p ON p.id = c.premio_id
		WHERE c.id = $1
		FOR UPDATE OF c
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrRedemptionNotFound
		}
		return nil, fmt.Errorf("ошибка чтения canje: %w", err)
	}
	return rd, nil
}

// List возвращает canjes по фильтру, новые первыми.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]*Redemption, error) {
	b := sq.Select(redemptionColumns).
		From("compras c").
		Join("premios p ON p.id = c.premio_id").
		OrderBy("c.created_at DESC", "c.id DESC").
		PlaceholderFormat(sq.Dollar)
	if f.State != "" {
		b = b.Where(sq.Eq{"c.estado": f.State})
	}
	if f.UserID != nil {
		b = b.Where(sq.Eq{"c.usuario_id": *f.UserID})
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
	rows, err := postgres.Executor(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения canjes: %w", err)
	}
	defer rows.Close()

	var out []*Redemption
	for rows.Next() {
		rd, err := scanRedemption(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования canje: %w", err)
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

// UpdateState меняет состояние и заметку.
func (r *Repository) UpdateState(ctx context.Context, id int64, state string, notes *string) error {
	_, err := postgres.Executor(ctx, r.db).Exec(ctx, `
		UPDATE compras SET estado = $2, notas = COALESCE($3, notas), updated_at = NOW()
		WHERE id = $1
	`, id, state, notes)
	if err != nil {
		return fmt.Errorf("ошибка обновления canje: %w", err)
	}
	return nil
}

func scanRedemption(row pgx.Row) (*Redemption, error) {
	var rd Redemption
	err := row.Scan(&rd.ID, &rd.UserID, &rd.PrizeID, &rd.PrizeName, &rd.PointsRequired, &rd.State, &rd.Notes, &rd.CreatedAt, &rd.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rd, nil
}
