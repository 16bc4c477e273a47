// Package prizes - repository.go работает с таблицей premios.
package prizes

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

const prizeColumns = `id, nombre, descripcion, puntos_requeridos, stock, activo, imagen, created_at, updated_at`

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// List возвращает призы, дешёвые первыми.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]*Prize, error) {
	b := sq.Select(prizeColumns).
		From("premios").
		OrderBy("puntos_requeridos ASC", "id ASC").
		PlaceholderFormat(sq.Dollar)
	if activeOnly {
		b = b.Where(sq.Eq{"activo": true})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка построения запроса: %w", err)
	}
	rows, err := postgres.Executor(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения призов: %w", err)
	}
	defer rows.Close()

	var out []*Prize
	for rows.Next() {
		p, err := scanPrize(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования приза: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Prize, error) {
	return r.getOne(ctx, `SELECT `+prizeColumns+` FROM premios WHERE id = $1`, id)
}

// LockByID читает приз с блокировкой строки.
func (r *Repository) LockByID(ctx context.Context, id int64) (*Prize, error) {
	return r.getOne(ctx, `SELECT `+prizeColumns+` FROM premios WHERE id = $1 FOR UPDATE`, id)
}

func (r *Repository) Create(ctx context.Context, p *Prize) error {
	err := postgres.Executor(ctx, r.db).QueryRow(ctx, `
		INSERT INTO premios (nombre, descripcion, puntos_requeridos, stock, activo, imagen)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, p.Name, p.Description, p.PointsRequired, p.Stock, p.Active, p.Image).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания приза: %w", err)
	}
	return nil
}

// Update меняет только переданные поля.
func (r *Repository) Update(ctx context.Context, id int64, u PrizeUpdate) error {
	b := sq.Update("premios").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar)
	if u.Name != nil {
		b = b.Set("nombre", *u.Name)
	}
	if u.Description != nil {
		b = b.Set("descripcion", *u.Description)
	}
	if u.PointsRequired != nil {
		b = b.Set("puntos_requeridos", *u.PointsRequired)
	}
	if u.Stock != nil {
		b = b.Set("stock", *u.Stock)
	}
	if u.Active != nil {
		b = b.Set("activo", *u.Active)
	}
	if u.Image != nil {
		// Пустая строка удаляет картинку
		if *u.Image == "" {
			b = b.Set("imagen", nil)
		} else {
			b = b.Set("imagen", *u.Image)
		}
	}

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("ошибка построения запроса: %w", err)
	}
	tag, err := postgres.Executor(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления приза: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrPrizeNotFound
	}
	return nil
}

// DecrementStock уменьшает остаток на 1, если он положительный.
// false - остатка нет.
func (r *Repository) DecrementStock(ctx context.Context, id int64) (bool, error) {
	tag, err := postgres.Executor(ctx, r.db).Exec(ctx, `
		UPDATE premios SET stock = stock - 1, updated_at = NOW()
		WHERE id = $1 AND stock > 0
	`, id)
	if err != nil {
		return false, fmt.Errorf("ошибка списания остатка: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// IncrementStock возвращает единицу на склад (отклонённый canje).
func (r *Repository) IncrementStock(ctx context.Context, id int64) error {
	_, err := postgres.Executor(ctx, r.db).Exec(ctx,
		`UPDATE premios SET stock = stock + 1, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка возврата остатка: %w", err)
	}
	return nil
}

func (r *Repository) getOne(ctx context.Context, query string, args ...any) (*Prize, error) {
	p, err := scanPrize(postgres.Executor(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrPrizeNotFound
		}
		return nil, fmt.Errorf("ошибка чтения приза: %w", err)
	}
	return p, nil
}

func scanPrize(row pgx.Row) (*Prize, error) {
	var p Prize
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PointsRequired, &p.Stock, &p.Active, &p.Image, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
