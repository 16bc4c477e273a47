// Package referrals - repository.go работает с таблицей configuracion_referidos.
package referrals

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"laboratorio3d.cl/rewards/internal/db/postgres"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetConfig возвращает настройки. Если строки ещё нет, программа считается выключенной.
func (r *Repository) GetConfig(ctx context.Context) (*Config, error) {
	var c Config
	err := postgres.Executor(ctx, r.db).QueryRow(ctx, `
		SELECT porcentaje_comision, bono_primera_compra, activo, updated_at
		FROM configuracion_referidos
		WHERE id = 1
	`).Scan(&c.CommissionPercent, &c.FirstPurchaseBonus, &c.Active, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &Config{CommissionPercent: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("ошибка чтения настроек рефералов: %w", err)
	}
	return &c, nil
}

// SaveConfig создаёт или обновляет строку настроек.
func (r *Repository) SaveConfig(ctx context.Context, c *Config) error {
	err := postgres.Executor(ctx, r.db).QueryRow(ctx, `
		INSERT INTO configuracion_referidos (id, porcentaje_comision, bono_primera_compra, activo)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET porcentaje_comision = EXCLUDED.porcentaje_comision,
		    bono_primera_compra = EXCLUDED.bono_primera_compra,
		    activo = EXCLUDED.activo,
		    updated_at = NOW()
		RETURNING updated_at
	`, c.CommissionPercent, c.FirstPurchaseBonus, c.Active).Scan(&c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка сохранения настроек рефералов: %w", err)
	}
	return nil
}
