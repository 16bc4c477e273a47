package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"laboratorio3d.cl/rewards/internal/db/postgres"
)

// RunMigrations выполняет все SQL-миграции по порядку.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.PrepareMigrations(ctx, pool); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Users},
		{2, migration002Sessions},
		{3, migration003Points},
		{4, migration004Receipts},
		{5, migration005Prizes},
		{6, migration006Referrals},
	}

	for _, m := range migrations {
		applied, err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql)
		if err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		if applied {
			log.Infof("Миграция %d применена", m.version)
		}
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.
// Имена ограничений используются репозиториями для разбора ошибок.

var migration001Users = `
CREATE TABLE IF NOT EXISTS niveles (
    id BIGSERIAL PRIMARY KEY,
    nombre VARCHAR(100) NOT NULL,
    puntos_minimos BIGINT NOT NULL DEFAULT 0 CHECK (puntos_minimos >= 0),
    beneficios TEXT NOT NULL DEFAULT '',
    orden INTEGER NOT NULL DEFAULT 0,
    activo BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS usuarios (
    id BIGSERIAL PRIMARY KEY,
    nombre VARCHAR(255) NOT NULL,
    email VARCHAR(255) NOT NULL,
    password_hash TEXT NOT NULL,
    rol VARCHAR(20) NOT NULL DEFAULT 'cliente' CHECK (rol IN ('cliente', 'admin')),
    puntos BIGINT NOT NULL DEFAULT 0 CHECK (puntos >= 0),
    nivel_id BIGINT REFERENCES niveles(id) ON DELETE SET NULL,
    codigo_referido VARCHAR(20) NOT NULL,
    referido_por BIGINT REFERENCES usuarios(id) ON DELETE SET NULL,
    puede_canjear BOOLEAN NOT NULL DEFAULT TRUE,
    activo BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT usuarios_email_key UNIQUE (email),
    CONSTRAINT usuarios_codigo_referido_key UNIQUE (codigo_referido)
);
CREATE INDEX IF NOT EXISTS idx_usuarios_referido_por ON usuarios(referido_por);
`

var migration002Sessions = `
CREATE TABLE IF NOT EXISTS sesiones (
    token VARCHAR(128) PRIMARY KEY,
    usuario_id BIGINT NOT NULL REFERENCES usuarios(id) ON DELETE CASCADE,
    expires_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_sesiones_usuario_id ON sesiones(usuario_id);
CREATE INDEX IF NOT EXISTS idx_sesiones_expires_at ON sesiones(expires_at);

CREATE TABLE IF NOT EXISTS intentos_login (
    id BIGSERIAL PRIMARY KEY,
    email VARCHAR(255) NOT NULL,
    exito BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_intentos_login_email ON intentos_login(email, created_at DESC);
`

var migration003Points = `
CREATE TABLE IF NOT EXISTS movimientos_puntos (
    id BIGSERIAL PRIMARY KEY,
    usuario_id BIGINT NOT NULL REFERENCES usuarios(id) ON DELETE CASCADE,
    puntos BIGINT NOT NULL,
    motivo VARCHAR(50) NOT NULL,
    descripcion TEXT,
    referencia_id BIGINT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_movimientos_usuario ON movimientos_puntos(usuario_id, created_at DESC);
`

var migration004Receipts = `
CREATE TABLE IF NOT EXISTS comprobantes (
    id BIGSERIAL PRIMARY KEY,
    usuario_id BIGINT NOT NULL REFERENCES usuarios(id) ON DELETE CASCADE,
    monto NUMERIC(14,2) NOT NULL CHECK (monto > 0),
    descripcion TEXT NOT NULL DEFAULT '',
    archivo TEXT NOT NULL,
    tipo_producto VARCHAR(100) NOT NULL DEFAULT '',
    numero_serie VARCHAR(100),
    referido_por BIGINT REFERENCES usuarios(id) ON DELETE SET NULL,
    estado VARCHAR(20) NOT NULL DEFAULT 'pendiente' CHECK (estado IN ('pendiente', 'aprobado', 'rechazado')),
    puntos_otorgados BIGINT NOT NULL DEFAULT 0,
    notas_admin TEXT,
    validado_por BIGINT REFERENCES usuarios(id) ON DELETE SET NULL,
    validado_en TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_comprobantes_usuario ON comprobantes(usuario_id);
CREATE INDEX IF NOT EXISTS idx_comprobantes_estado ON comprobantes(estado, created_at DESC);
`

var migration005Prizes = `
CREATE TABLE IF NOT EXISTS premios (
    id BIGSERIAL PRIMARY KEY,
    nombre VARCHAR(255) NOT NULL,
    descripcion TEXT NOT NULL DEFAULT '',
    puntos_requeridos BIGINT NOT NULL CHECK (puntos_requeridos > 0),
    stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
    activo BOOLEAN NOT NULL DEFAULT TRUE,
    imagen TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS compras (
    id BIGSERIAL PRIMARY KEY,
    usuario_id BIGINT NOT NULL REFERENCES usuarios(id) ON DELETE CASCADE,
    premio_id BIGINT NOT NULL REFERENCES premios(id),
    puntos_requeridos BIGINT NOT NULL,
    estado VARCHAR(20) NOT NULL DEFAULT 'pendiente' CHECK (estado IN ('pendiente', 'aprobado', 'rechazado', 'entregado')),
    notas TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT compras_usuario_premio_key UNIQUE (usuario_id, premio_id)
);
CREATE INDEX IF NOT EXISTS idx_compras_estado ON compras(estado, created_at DESC);
`

var migration006Referrals = `
CREATE TABLE IF NOT EXISTS configuracion_referidos (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    porcentaje_comision NUMERIC(5,2) NOT NULL DEFAULT 0 CHECK (porcentaje_comision BETWEEN 0 AND 100),
    bono_primera_compra BIGINT NOT NULL DEFAULT 0 CHECK (bono_primera_compra >= 0),
    activo BOOLEAN NOT NULL DEFAULT FALSE,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
