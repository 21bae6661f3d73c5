// Pacote redis implementa a fila de eventos e os contadores operacionais sobre Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/enquete-rapida/internal/domain"
	"github.com/marcelojr/enquete-rapida/internal/platform/logger"
)

// Fila publica eventos com LPUSH e consome com BRPOP, preservando a ordem de chegada.
type Fila struct {
	client   *redis.Client
	key      string
	bloqueio time.Duration
}

func NewFila(client *redis.Client, key string) *Fila {
	return &Fila{
		client:   client,
		key:      key,
		bloqueio: 5 * time.Second,
	}
}

func (f *Fila) PublicarEvento(ctx context.Context, evento domain.Evento) error {
	payload, err := json.Marshal(evento)
	if err != nil {
		return fmt.Errorf("redis fila: serializar evento: %w", err)
	}
	if err := f.client.LPush(ctx, f.key, payload).Err(); err != nil {
		return fmt.Errorf("redis fila: publicar %s: %w", evento.Tipo, err)
	}
	return nil
}

// ConsumirEventos bloqueia até o contexto encerrar ou o handler falhar.
// Payloads ilegíveis são descartados com log para não travar a fila.
func (f *Fila) ConsumirEventos(ctx context.Context, handler func(context.Context, domain.Evento) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := f.client.BRPop(ctx, f.bloqueio, f.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("redis fila: consumir: %w", err)
		}

		if len(res) != 2 {
			continue
		}

		var evento domain.Evento
		if err := json.Unmarshal([]byte(res[1]), &evento); err != nil {
			logger.Warn("evento descartado", "fila", f.key, "erro", err)
			continue
		}

		if err := handler(ctx, evento); err != nil {
			return err
		}
	}
}

// Pendentes informa quantos eventos aguardam o worker.
func (f *Fila) Pendentes(ctx context.Context) (int64, error) {
	n, err := f.client.LLen(ctx, f.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis fila: tamanho: %w", err)
	}
	return n, nil
}

var _ domain.Fila = (*Fila)(nil)
