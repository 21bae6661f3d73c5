// Pacote worker processa os eventos publicados pela API e mantém os contadores operacionais.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marcelojr/enquete-rapida/internal/app/voting"
	"github.com/marcelojr/enquete-rapida/internal/domain"
	"github.com/marcelojr/enquete-rapida/internal/platform/metrics"
)

var ErrEventoDesconhecido = errors.New("tipo de evento desconhecido")

// EventProcessor converte cada evento em incrementos no Contador.
type EventProcessor struct {
	contador domain.Contador
}

func NewEventProcessor(contador domain.Contador) *EventProcessor {
	return &EventProcessor{contador: contador}
}

func (p *EventProcessor) Process(ctx context.Context, evento domain.Evento) error {
	start := time.Now()

	switch evento.Tipo {
	case domain.EventoEnqueteCriada, domain.EventoVotoAceito, domain.EventoVotoDuplicado:
	default:
		return fmt.Errorf("worker: %w: %q", ErrEventoDesconhecido, evento.Tipo)
	}

	if _, err := p.contador.Incrementar(ctx, voting.CounterKeyEvento(evento.Tipo), 1); err != nil {
		return fmt.Errorf("worker: incrementar contador %s: %w", evento.Tipo, err)
	}

	if evento.Tipo == domain.EventoVotoAceito && evento.EnqueteID != "" {
		if _, err := p.contador.Incrementar(ctx, voting.CounterKeyVotosEnquete(evento.EnqueteID), 1); err != nil {
			return fmt.Errorf("worker: incrementar votos da enquete %s: %w", evento.EnqueteID, err)
		}
	}

	metrics.IncEventProcessed(string(evento.Tipo))
	metrics.ObserveProcessingDuration(time.Since(start).Seconds())

	return nil
}
