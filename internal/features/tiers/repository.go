// Package tiers - repository.go работает с таблицей niveles.
package tiers

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

const tierColumns = `id, nombre, puntos_minimos, beneficios, orden, activo, created_at`

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// List возвращает уровни, по порядку отображения.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]Tier, error) {
	b := sq.Select(tierColumns).
		From("niveles").
		OrderBy("orden ASC", "puntos_minimos ASC").
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
		return nil, fmt.Errorf("ошибка получения уровней: %w", err)
	}
	defer rows.Close()

	var out []Tier
	for rows.Next() {
		t, err := scanTier(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования уровня: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Tier, error) {
	t, err := scanTier(postgres.Executor(ctx, r.db).QueryRow(ctx,
		`SELECT `+tierColumns+` FROM niveles WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrTierNotFound
		}
		return nil, fmt.Errorf("ошибка чтения уровня: %w", err)
	}
	return t, nil
}

// Create добавляет уровень и заполняет ID.
func (r *Repository) Create(ctx context.Context, t *Tier) error {
	err := postgres.Executor(ctx, r.db).QueryRow(ctx, `
		INSERT INTO niveles (nombre, puntos_minimos, beneficios, orden, activo)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, t.Name, t.MinPoints, t.Benefits, t.DisplayOrder, t.Active).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания уровня: %w", err)
	}
	return nil
}

// Update меняет только переданные поля.
func (r *Repository) Update(ctx context.Context, id int64, u TierUpdate) error {
	b := sq.Update("niveles").Where(sq.Eq{"id": id}).PlaceholderFormat(sq.Dollar)
	changed := false
	if u.Name != nil {
		b = b.Set("nombre", *u.Name)
		changed = true
	}
	if u.MinPoints != nil {
		b = b.Set("puntos_minimos", *u.MinPoints)
		changed = true
	}
	if u.Benefits != nil {
		b = b.Set("beneficios", *u.Benefits)
		changed = true
	}
	if u.DisplayOrder != nil {
		b = b.Set("orden", *u.DisplayOrder)
		changed = true
	}
	if u.Active != nil {
		b = b.Set("activo", *u.Active)
		changed = true
	}
	if !changed {
		_, err := r.GetByID(ctx, id)
		return err
	}

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("ошибка построения запроса: %w", err)
	}
	tag, err := postgres.Executor(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления уровня: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrTierNotFound
	}
	return nil
}

// Count возвращает количество уровней (для сидов).
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := postgres.Executor(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM niveles`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта уровней: %w", err)
	}
	return n, nil
}

func scanTier(row pgx.Row) (*Tier, error) {
	var t Tier
	if err := row.Scan(&t.ID, &t.Name, &t.MinPoints, &t.Benefits, &t.DisplayOrder, &t.Active, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
