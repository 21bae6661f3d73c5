package voting

import (
	"errors"
	"fmt"
)

var (
	ErrValidacao                 = errors.New("requisicao invalida")
	ErrEnqueteNaoEncontrada      = errors.New("enquete nao encontrada")
	ErrPersistencia              = errors.New("falha de persistencia")
	ErrEstatisticasIndisponiveis = errors.New("estatisticas indisponiveis")
)

// Códigos de motivo devolvidos ao cliente junto com ErrValidacao.
const (
	MotivoPerguntaInvalida   = "invalid_question"
	MotivoOpcoesInvalidas    = "invalid_options"
	MotivoTextoOpcaoInvalido = "invalid_option_text"
	MotivoVotoInvalido       = "invalid_vote_request"
)

// ValidationError carrega o motivo da rejeição; errors.Is(err, ErrValidacao) continua valendo.
type ValidationError struct {
	Reason string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", ErrValidacao, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidacao, e.Reason, e.Detail)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidacao
}

func validacao(reason, detail string) error {
	return &ValidationError{Reason: reason, Detail: detail}
}

func persistencia(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistencia, op, err)
}
