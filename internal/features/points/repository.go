// Package points - repository.go выполняет операции с usuarios.puntos и movimientos_puntos.
package points

import (
	"context"
	"errors"
	"fmt"

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

// AddPoints атомарно увеличивает баланс и возвращает новое значение.
// Должен вызываться внутри транзакции вместе с AppendLedger.
func (r *Repository) AddPoints(ctx context.Context, userID, amount int64) (int64, error) {
	var balance int64
	err := postgres.Executor(ctx, r.db).QueryRow(ctx, `
		UPDATE usuarios
		SET puntos = puntos + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING puntos
	`, userID, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, common.ErrUserNotFound
		}
		return 0, fmt.Errorf("ошибка начисления баллов: %w", err)
	}
	return balance, nil
}

// AppendLedger записывает движение в журнал.
func (r *Repository) AppendLedger(ctx context.Context, c Credit) error {
	_, err := postgres.Executor(ctx, r.db).Exec(ctx, `
		INSERT INTO movimientos_puntos (usuario_id, puntos, motivo, descripcion, referencia_id)
		VALUES ($1, $2, $3, $4, $5)
	`, c.UserID, c.Amount, c.Reason, c.Description, c.ReferenceID)
	if err != nil {
		return fmt.Errorf("ошибка записи в журнал баллов: %w", err)
	}
	return nil
}

// History возвращает последние записи журнала пользователя.
func (r *Repository) History(ctx context.Context, userID int64, limit int) ([]LedgerEntry, error) {
	rows, err := postgres.Executor(ctx, r.db).Query(ctx, `
		SELECT id, usuario_id, puntos, motivo, descripcion, referencia_id, created_at
		FROM movimientos_puntos
		WHERE usuario_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения журнала: %w", err)
	}
	defer rows.Close()

	var out []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Delta, &e.Reason, &e.Description, &e.ReferenceID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
