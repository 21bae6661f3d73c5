package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/enquete-rapida/internal/domain"
)

// Contador guarda os totais operacionais (enquetes criadas, votos aceitos, duplicados)
// em chaves simples do Redis, todas sob o mesmo prefixo.
type Contador struct {
	client *redis.Client
	prefix string
}

func NewContador(client *redis.Client, prefix string) *Contador {
	return &Contador{
		client: client,
		prefix: prefix,
	}
}

func (c *Contador) Incrementar(ctx context.Context, chave string, delta int64) (int64, error) {
	total, err := c.client.IncrBy(ctx, c.key(chave), delta).Result()
	if err != nil {
		return 0, fmt.Errorf("redis contador: incrementar %s: %w", chave, err)
	}
	return total, nil
}

// Obter trata chave ausente como zero.
func (c *Contador) Obter(ctx context.Context, chave string) (int64, error) {
	val, err := c.client.Get(ctx, c.key(chave)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis contador: obter %s: %w", chave, err)
	}
	return val, nil
}

// ObterTodos lê todas as chaves num único pipeline.
func (c *Contador) ObterTodos(ctx context.Context, chaves []string) (map[string]int64, error) {
	resultado := make(map[string]int64, len(chaves))
	if len(chaves) == 0 {
		return resultado, nil
	}

	cmds := make([]*redis.StringCmd, len(chaves))
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, chave := range chaves {
			cmds[i] = pipe.Get(ctx, c.key(chave))
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis contador: pipeline: %w", err)
	}

	for i, cmd := range cmds {
		val, err := cmd.Int64()
		switch {
		case errors.Is(err, redis.Nil):
			resultado[chaves[i]] = 0
		case err != nil:
			return nil, fmt.Errorf("redis contador: valor invalido para %s: %w", chaves[i], err)
		default:
			resultado[chaves[i]] = val
		}
	}

	return resultado, nil
}

func (c *Contador) key(chave string) string {
	if c.prefix == "" {
		return chave
	}
	return c.prefix + ":" + chave
}

var _ domain.Contador = (*Contador)(nil)
