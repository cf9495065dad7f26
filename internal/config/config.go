package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"quiz-api"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`

	Postgres    Postgres
	Redis       Redis
	Security    Security
	Leaderboard Leaderboard
	Maintenance Maintenance
	CORS        CORS
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host            string        `env:"PG_HOST,notEmpty"`
	Port            int           `env:"PG_PORT" envDefault:"5432"`
	User            string        `env:"PG_USER,notEmpty"`
	Password        string        `env:"PG_PASSWORD,notEmpty"`
	Database        string        `env:"PG_DATABASE,notEmpty"`
	SSLMode         string        `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns        int32         `env:"PG_MAX_CONNS" envDefault:"10"`
	MaxConnLifetime time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"30m"`
}

// DSN renders a keyword/value connection string understood by pgx.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// Redis holds cache and pub/sub configuration. An empty Addr disables the
// question cache and the live leaderboard.
type Redis struct {
	Addr             string        `env:"REDIS_ADDR" envDefault:""`
	DB               int           `env:"REDIS_DB" envDefault:"0"`
	PoolSize         int           `env:"REDIS_POOL_SIZE" envDefault:"20"`
	QuestionCacheTTL time.Duration `env:"QUESTION_CACHE_TTL" envDefault:"10m"`
}

// Enabled reports whether a Redis address was configured.
func (r Redis) Enabled() bool {
	return r.Addr != ""
}

// Security stores secrets for signing and auth.
type Security struct {
	JWTSecret      string        `env:"JWT_SECRET,notEmpty"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
}

// Leaderboard governs the per-quiz ranking fan-out.
type Leaderboard struct {
	Channel string `env:"LEADERBOARD_CHANNEL" envDefault:"leaderboard:updates"`
	TopN    int    `env:"LEADERBOARD_TOP_N" envDefault:"10"`
}

// Maintenance schedules housekeeping jobs.
type Maintenance struct {
	OrphanSweepSchedule string        `env:"ORPHAN_SWEEP_SCHEDULE" envDefault:"@every 1h"`
	OrphanGracePeriod   time.Duration `env:"ORPHAN_GRACE_PERIOD" envDefault:"15m"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Leaderboard.TopN <= 0 {
		return nil, fmt.Errorf("parse config: LEADERBOARD_TOP_N must be positive")
	}
	return cfg, nil
}
