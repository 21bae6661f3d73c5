// Pacote ids gera identificadores ULID ordenáveis para enquetes, opções e votos.
package ids

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator é seguro para uso concorrente; a entropia monotônica exige exclusão mútua.
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

func NewGenerator() *Generator {
	return NewGeneratorWithClock(func() time.Time { return time.Now().UTC() })
}

// NewGeneratorWithClock permite ancorar o timestamp do ULID no relógio do domínio.
func NewGeneratorWithClock(now func() time.Time) *Generator {
	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Generator{
		entropy: ulid.Monotonic(src, 0),
		now:     now,
	}
}

func (g *Generator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy).String()
}

// Valid indica se s tem o formato de um ULID; ids fora do formato nunca existem no banco.
func Valid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}

var (
	defaultOnce sync.Once
	defaultGen  *Generator
)

func DefaultGenerator() *Generator {
	defaultOnce.Do(func() {
		defaultGen = NewGenerator()
	})
	return defaultGen
}
