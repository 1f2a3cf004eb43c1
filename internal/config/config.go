package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`

	JWTSecret    string        `env:"JWT_SECRET,notEmpty"`
	JWTIssuer    string        `env:"JWT_ISSUER" envDefault:"task-manager"`
	JWTAccessTTL time.Duration `env:"JWT_ACCESS_TTL" envDefault:"15m"`

	SessionTTL          time.Duration `env:"SESSION_TTL" envDefault:"240h"`
	SessionPruneExpired bool          `env:"SESSION_PRUNE_EXPIRED" envDefault:"true"`
	BcryptCost          int           `env:"BCRYPT_COST" envDefault:"10"`

	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"10m"`
	LoginRateMax    int           `env:"LOGIN_RATE_MAX" envDefault:"10"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	CORSAllowOrigin string `env:"CORS_ALLOW_ORIGIN" envDefault:"*"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UsesPostgres indica si hay una base de datos configurada; sin ella se usa el store en memoria.
func (c *Config) UsesPostgres() bool {
	return c.DatabaseURL != ""
}
