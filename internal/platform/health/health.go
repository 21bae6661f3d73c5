// Pacote health expõe a prontidão dos binários checando cada dependência configurada.
package health

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	statusOK           = "ok"
	statusIndisponivel = "unavailable"
	statusDesligado    = "disabled"
)

// Checker pinga Postgres e Redis; qualquer um pode ser nil quando o binário não o usa.
type Checker struct {
	db      *sql.DB
	redis   *redis.Client
	timeout time.Duration
}

func NewChecker(db *sql.DB, redis *redis.Client) *Checker {
	return &Checker{db: db, redis: redis, timeout: 2 * time.Second}
}

type Relatorio struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Verificar roda todas as checagens, mesmo depois da primeira falha.
func (c *Checker) Verificar(ctx context.Context) Relatorio {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rel := Relatorio{Status: statusOK, Checks: make(map[string]string, 2)}

	rel.Checks["postgres"] = statusDesligado
	if c.db != nil {
		rel.Checks["postgres"] = statusOK
		if err := c.db.PingContext(ctx); err != nil {
			rel.Checks["postgres"] = statusIndisponivel
			rel.Status = statusIndisponivel
		}
	}

	rel.Checks["redis"] = statusDesligado
	if c.redis != nil {
		rel.Checks["redis"] = statusOK
		if err := c.redis.Ping(ctx).Err(); err != nil {
			rel.Checks["redis"] = statusIndisponivel
			rel.Status = statusIndisponivel
		}
	}

	return rel
}

func (c *Checker) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rel := c.Verificar(r.Context())

		status := http.StatusOK
		if rel.Status != statusOK {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(rel)
	}
}
