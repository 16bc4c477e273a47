// Package receipts - repository.go работает с таблицей comprobantes.
package receipts

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"laboratorio3d.cl/rewards/internal/common"
	"laboratorio3d.cl/rewards/internal/db/postgres"
)

// В списках файл не читаем: он может весить мегабайты.
const (
	columnsWithFile = `id, usuario_id, monto, descripcion, archivo, tipo_producto, numero_serie, referido_por,
		estado, puntos_otorgados, notas_admin, validado_por, validado_en, created_at`
	columnsNoFile = `id, usuario_id, monto, descripcion, '' AS archivo, tipo_producto, numero_serie, referido_por,
		estado, puntos_otorgados, notas_admin, validado_por, validado_en, created_at`
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новый чек в состоянии pendiente.
func (r *Repository) Create(ctx context.Context, rc *Receipt) error {
	err := postgres.Executor(ctx, r.db).QueryRow(ctx, `
		INSERT INTO comprobantes (usuario_id, monto, descripcion, archivo, tipo_producto, numero_serie, referido_por, estado)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, rc.UserID, rc.Amount, rc.Description, rc.File, rc.ProductType, rc.SerialNumber, rc.ReferrerID, rc.State,
	).Scan(&rc.ID, &rc.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания чека: %w", err)
	}
	return nil
}

// GetByID возвращает чек вместе с файлом.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Receipt, error) {
	return r.getOne(ctx, `SELECT `+columnsWithFile+` FROM comprobantes WHERE id = $1`, id)
}

// LockByID блокирует строку чека до конца транзакции.
func (r *Repository) LockByID(ctx context.Context, id int64) (*Receipt, error) {
	return r.getOne(ctx, `SELECT `+columnsNoFile+` FROM comprobantes WHERE id = $1 FOR UPDATE`, id)
}

// ListByUser - чеки пользователя, новые первыми.
func (r *Repository) ListByUser(ctx context.Context, userID int64, limit int) ([]*Receipt, error) {
	return r.List(ctx, ListFilter{UserID: &userID, Limit: limit})
}

// List возвращает чеки по фильтру.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]*Receipt, error) {
	b := sq.Select(columnsNoFile).
		From("comprobantes").
		OrderBy("created_at DESC", "id DESC").
		PlaceholderFormat(sq.Dollar)
	if f.State != "" {
		b = b.Where(sq.Eq{"estado": f.State})
	}
	if f.UserID != nil {
		b = b.Where(sq.Eq{"usuario_id": *f.UserID})
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
		return nil, fmt.Errorf("ошибка получения чеков: %w", err)
	}
	defer rows.Close()

	var out []*Receipt
	for rows.Next() {
		rc, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования чека: %w", err)
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

// MarkReviewed переводит чек из pendiente в итоговое состояние.
// Повторно проверить чек нельзя: условие по estado.
func (r *Repository) MarkReviewed(ctx context.Context, id int64, state string, pts int64, notes *string, adminID int64, at time.Time) error {
	tag, err := postgres.Executor(ctx, r.db).Exec(ctx, `
		UPDATE comprobantes
		SET estado = $2, puntos_otorgados = $3, notas_admin = $4, validado_por = $5, validado_en = $6
		WHERE id = $1 AND estado = 'pendiente'
	`, id, state, pts, notes, adminID, at)
	if err != nil {
		return fmt.Errorf("ошибка обновления чека: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrReceiptAlreadyProcessed
	}
	return nil
}

// CountApprovedByUser - сколько чеков пользователя одобрено.
func (r *Repository) CountApprovedByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	err := postgres.Executor(ctx, r.db).QueryRow(ctx,
		`SELECT COUNT(*) FROM comprobantes WHERE usuario_id = $1 AND estado = 'aprobado'`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта чеков: %w", err)
	}
	return n, nil
}

func (r *Repository) getOne(ctx context.Context, query string, args ...any) (*Receipt, error) {
	rc, err := scanReceipt(postgres.Executor(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrReceiptNotFound
		}
		return nil, fmt.Errorf("ошибка чтения чека: %w", err)
	}
	return rc, nil
}

func scanReceipt(row pgx.Row) (*Receipt, error) {
	var rc Receipt
	err := row.Scan(
		&rc.ID, &rc.UserID, &rc.Amount, &rc.Description, &rc.File, &rc.ProductType, &rc.SerialNumber,
		&rc.ReferrerID, &rc.State, &rc.PointsAwarded, &rc.AdminNotes, &rc.ValidatedBy, &rc.ValidatedAt, &rc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rc, nil
}
