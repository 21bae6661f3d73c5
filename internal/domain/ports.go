package domain

import (
	"context"
	"time"
)

type EnqueteRepository interface {
	Create(ctx context.Context, e Enquete) error
	Delete(ctx context.Context, id EnqueteID) error
	// FindAtivaByID devolve ErrNotFound também para enquetes inativas.
	FindAtivaByID(ctx context.Context, id EnqueteID) (Enquete, error)
}

// AutoriaAtomica é implementada por repositórios capazes de gravar enquete e opções
// numa única transação. Sem ela, a criação recorre à remoção compensatória.
type AutoriaAtomica interface {
	CreateComOpcoes(ctx context.Context, e Enquete, opcoes []Opcao) error
}

type OpcaoRepository interface {
	BulkCreate(ctx context.Context, enqueteID EnqueteID, opcoes []Opcao) error
	FindByIDAndEnquete(ctx context.Context, id OpcaoID, enqueteID EnqueteID) (Opcao, error)
	ListByEnquete(ctx context.Context, enqueteID EnqueteID) ([]Opcao, error)
}

type VotoRepository interface {
	// Registrar devolve ErrVotoDuplicado quando o banco rejeita o par (enquete, eleitor).
	Registrar(ctx context.Context, voto Voto) error
	TotalPorOpcao(ctx context.Context, enqueteID EnqueteID) (map[OpcaoID]int64, error)
}

type Contador interface {
	Incrementar(ctx context.Context, chave string, delta int64) (int64, error)
	Obter(ctx context.Context, chave string) (int64, error)
	ObterTodos(ctx context.Context, chaves []string) (map[string]int64, error)
}

type Fila interface {
	PublicarEvento(ctx context.Context, evento Evento) error
	ConsumirEventos(ctx context.Context, handler func(context.Context, Evento) error) error
}

type Clock interface {
	Agora() time.Time
}

type VotingService interface {
	CriarEnquete(ctx context.Context, pergunta string, opcoes []string) (Enquete, error)
	ObterEnquete(ctx context.Context, id EnqueteID) (Enquete, error)
	RegistrarVoto(ctx context.Context, voto Voto) (ResultadoVoto, error)
	Resultados(ctx context.Context, id EnqueteID) (ResultadoEnquete, error)
	Estatisticas(ctx context.Context) (Estatisticas, error)
}
