// Pacote config centraliza o carregamento da configuração usada pelos binários.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config agrega todos os parâmetros necessários para API e worker.
type Config struct {
	HTTPAddress string `yaml:"http_address" env:"HTTP_ADDRESS" env-default:":8080"`

	PostgresHost     string `yaml:"postgres_host" env:"POSTGRES_HOST" env-default:"localhost"`
	PostgresPort     string `yaml:"postgres_port" env:"POSTGRES_PORT" env-default:"5432"`
	PostgresUser     string `yaml:"postgres_user" env:"POSTGRES_USER" env-default:"enquete"`
	PostgresPassword string `yaml:"postgres_password" env:"POSTGRES_PASSWORD" env-default:"enquete"`
	PostgresDB       string `yaml:"postgres_db" env:"POSTGRES_DB" env-default:"enquetes"`
	PostgresSSLMode  string `yaml:"postgres_sslmode" env:"POSTGRES_SSLMODE" env-default:"disable"`

	PostgresMaxConns        int           `yaml:"postgres_max_conns" env:"POSTGRES_MAX_CONNS" env-default:"25"`
	PostgresConnMaxLifetime time.Duration `yaml:"postgres_conn_max_lifetime" env:"POSTGRES_CONN_MAX_LIFETIME" env-default:"1h"`

	RedisEnabled      bool   `yaml:"redis_enabled" env:"REDIS_ENABLED" env-default:"true"`
	RedisAddr         string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword     string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB           int    `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
	RedisPoolSize     int    `yaml:"redis_pool_size" env:"REDIS_POOL_SIZE" env-default:"20"`
	FilaKey           string `yaml:"redis_queue_key" env:"REDIS_QUEUE_KEY" env-default:"fila:eventos"`
	ContadorKeyPrefix string `yaml:"redis_counter_prefix" env:"REDIS_COUNTER_PREFIX" env-default:"contador"`

	AutoMigrate bool `yaml:"db_auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`

	WorkerMetricsAddress string   `yaml:"worker_metrics_address" env:"WORKER_METRICS_ADDRESS" env-default:":9090"`
	LogLevel             string   `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	CORSAllowedOrigins   []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

// Load lê variáveis de ambiente; com CONFIG_PATH definido, o YAML é lido antes e o ambiente sobrescreve.
func Load() (Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: ler %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: ler ambiente: %w", err)
	}

	if cfg.RedisDB < 0 {
		return Config{}, fmt.Errorf("config: REDIS_DB invalido: %d", cfg.RedisDB)
	}

	if cfg.PostgresMaxConns <= 0 {
		return Config{}, fmt.Errorf("config: POSTGRES_MAX_CONNS invalido: %d", cfg.PostgresMaxConns)
	}

	if cfg.RedisPoolSize <= 0 {
		return Config{}, fmt.Errorf("config: REDIS_POOL_SIZE invalido: %d", cfg.RedisPoolSize)
	}

	return cfg, nil
}

func (c Config) PostgresDSN() string {
	// Formato URL é aceito tanto pelo pgx quanto pelas ferramentas de migração.
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     c.PostgresHost + ":" + c.PostgresPort,
		Path:     "/" + c.PostgresDB,
		RawQuery: "sslmode=" + url.QueryEscape(c.PostgresSSLMode),
	}
	return u.String()
}
