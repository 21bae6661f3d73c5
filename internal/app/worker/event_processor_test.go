package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/enquete-rapida/internal/app/voting"
	"github.com/marcelojr/enquete-rapida/internal/domain"
)

var instante = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func TestEventProcessor_Process_QuandoVotoAceito_DeveIncrementarGlobalEPorEnquete(t *testing.T) {
	contador := newMemContador()
	processor := NewEventProcessor(contador)

	evento := domain.Evento{Tipo: domain.EventoVotoAceito, EnqueteID: "enquete-1", OpcaoID: "opcao-1", OcorridoEm: instante}

	require.NoError(t, processor.Process(context.Background(), evento))
	require.NoError(t, processor.Process(context.Background(), evento))

	assert.Equal(t, int64(2), contador.valores[voting.CounterKeyEvento(domain.EventoVotoAceito)])
	assert.Equal(t, int64(2), contador.valores[voting.CounterKeyVotosEnquete("enquete-1")])
}

func TestEventProcessor_Process_QuandoEnqueteCriadaOuDuplicado_SoIncrementaGlobal(t *testing.T) {
	contador := newMemContador()
	processor := NewEventProcessor(contador)

	require.NoError(t, processor.Process(context.Background(), domain.Evento{Tipo: domain.EventoEnqueteCriada, EnqueteID: "enquete-1", OcorridoEm: instante}))
	require.NoError(t, processor.Process(context.Background(), domain.Evento{Tipo: domain.EventoVotoDuplicado, EnqueteID: "enquete-1", OcorridoEm: instante}))

	assert.Equal(t, int64(1), contador.valores[voting.CounterKeyEvento(domain.EventoEnqueteCriada)])
	assert.Equal(t, int64(1), contador.valores[voting.CounterKeyEvento(domain.EventoVotoDuplicado)])
	_, existe := contador.valores[voting.CounterKeyVotosEnquete("enquete-1")]
	assert.False(t, existe, "apenas votos aceitos contam por enquete")
}

func TestEventProcessor_Process_QuandoTipoDesconhecido_DeveRetornarErro(t *testing.T) {
	contador := newMemContador()
	processor := NewEventProcessor(contador)

	err := processor.Process(context.Background(), domain.Evento{Tipo: "voto_removido"})

	assert.ErrorIs(t, err, ErrEventoDesconhecido)
	assert.Empty(t, contador.valores)
}

func TestEventProcessor_Process_QuandoContadorFalha_DevePropagarErro(t *testing.T) {
	contador := newMemContador()
	contador.err = errors.New("redis fora")
	processor := NewEventProcessor(contador)

	err := processor.Process(context.Background(), domain.Evento{Tipo: domain.EventoVotoAceito, EnqueteID: "e"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis fora")
}

type memContador struct {
	valores map[string]int64
	err     error
}

func newMemContador() *memContador {
	return &memContador{valores: make(map[string]int64)}
}

func (m *memContador) Incrementar(_ context.Context, chave string, delta int64) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.valores[chave] += delta
	return m.valores[chave], nil
}

func (m *memContador) Obter(_ context.Context, chave string) (int64, error) {
	return m.valores[chave], nil
}

func (m *memContador) ObterTodos(_ context.Context, chaves []string) (map[string]int64, error) {
	resultado := make(map[string]int64, len(chaves))
	for _, chave := range chaves {
		resultado[chave] = m.valores[chave]
	}
	return resultado, nil
}
