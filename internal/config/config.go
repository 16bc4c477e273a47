// Package config загружает конфигурацию сервиса из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- HTTP ---
	HTTPAddr         string        `envconfig:"HTTP_ADDR" default:":8080"`
	HTTPReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	HTTPWriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s"`
	// Список origin через запятую, "*" - разрешить все
	CORSAllowedOriginsRaw string   `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	CORSAllowedOrigins    []string `envconfig:"-"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"lab3d"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"laboratorio3d"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"2"`

	// --- Redis (необязательный кэш сессий) ---
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:""`
	RedisUser     string        `envconfig:"REDIS_USER" default:""`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisTTL      time.Duration `envconfig:"REDIS_SESSION_TTL" default:"5m"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`

	// --- Auth ---
	SessionTTL       time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	LoginMaxAttempts int           `envconfig:"LOGIN_MAX_ATTEMPTS" default:"5"`
	LoginLockWindow  time.Duration `envconfig:"LOGIN_LOCK_WINDOW" default:"1h"`

	// --- Points ---
	StartingPoints int64 `envconfig:"STARTING_POINTS" default:"100"`
	// Сколько денежных единиц стоит один балл
	AmountPerPoint int64 `envconfig:"AMOUNT_PER_POINT" default:"1000"`
	MaxUploadBytes int   `envconfig:"MAX_UPLOAD_BYTES" default:"5242880"`

	// --- Referrals (путь "a": бонус за крупную покупку) ---
	ReferralPurchaseFloor int64 `envconfig:"REFERRAL_PURCHASE_FLOOR" default:"500000"`
	ReferralPurchaseBonus int64 `envconfig:"REFERRAL_PURCHASE_BONUS" default:"50"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"120"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Seed (только cmd/seed) ---
	SeedAdminEmail    string `envconfig:"SEED_ADMIN_EMAIL" default:"admin@laboratorio3d.cl"`
	SeedAdminPassword string `envconfig:"SEED_ADMIN_PASSWORD" default:""`
	SeedTestUsers     bool   `envconfig:"SEED_TEST_USERS" default:"false"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// RedisEnabled - true, если задан адрес redis.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func (c *Config) Validate() error {
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL должен быть > 0")
	}
	if c.AmountPerPoint <= 0 {
		return fmt.Errorf("AMOUNT_PER_POINT должен быть > 0")
	}
	if c.StartingPoints < 0 {
		return fmt.Errorf("STARTING_POINTS не может быть отрицательным")
	}
	if c.ReferralPurchaseFloor < 0 || c.ReferralPurchaseBonus < 0 {
		return fmt.Errorf("некорректные REFERRAL_PURCHASE_FLOOR/REFERRAL_PURCHASE_BONUS")
	}
	if c.LoginMaxAttempts <= 0 {
		return fmt.Errorf("LOGIN_MAX_ATTEMPTS должен быть > 0")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("некорректные RATE_LIMIT_REQUESTS/RATE_LIMIT_WINDOW")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES должен быть > 0")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	cfg.CORSAllowedOrigins = parseCSV(cfg.CORSAllowedOriginsRaw)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseCSV(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
