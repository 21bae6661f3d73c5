// Pacote voting implementa as regras de negócio da enquete: criação, voto e apuração.
package voting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/marcelojr/enquete-rapida/internal/domain"
	"github.com/marcelojr/enquete-rapida/internal/platform/ids"
	"github.com/marcelojr/enquete-rapida/internal/platform/logger"
	"github.com/marcelojr/enquete-rapida/internal/platform/metrics"
)

const (
	MaxPergunta   = 500
	MaxTextoOpcao = 200
	MinOpcoes     = 2
	MaxOpcoes     = 4
)

// Service concentra as regras de votação; fila e contador são opcionais (nil com Redis desligado).
type Service struct {
	enquetes domain.EnqueteRepository
	opcoes   domain.OpcaoRepository
	votos    domain.VotoRepository
	contador domain.Contador
	fila     domain.Fila
	clock    domain.Clock
	ids      *ids.Generator
}

func NewService(
	enquetes domain.EnqueteRepository,
	opcoes domain.OpcaoRepository,
	votos domain.VotoRepository,
	contador domain.Contador,
	fila domain.Fila,
	clock domain.Clock,
	idsGen *ids.Generator,
) *Service {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	return &Service{
		enquetes: enquetes,
		opcoes:   opcoes,
		votos:    votos,
		contador: contador,
		fila:     fila,
		clock:    clock,
		ids:      idsGen,
	}
}

// CriarEnquete valida tudo antes de tocar no banco e só publica o evento depois
// que enquete e opções estiverem gravadas.
func (s *Service) CriarEnquete(ctx context.Context, pergunta string, textos []string) (domain.Enquete, error) {
	pergunta, textos, err := validarEnquete(pergunta, textos)
	if err != nil {
		return domain.Enquete{}, err
	}

	agora := s.clock.Agora()
	enquete := domain.Enquete{
		ID:       domain.EnqueteID(s.ids.New()),
		Pergunta: pergunta,
		Ativa:    true,
		CriadaEm: agora,
	}

	opcoes := make([]domain.Opcao, len(textos))
	for i, texto := range textos {
		opcoes[i] = domain.Opcao{
			ID:        domain.OpcaoID(s.ids.New()),
			EnqueteID: enquete.ID,
			Texto:     texto,
			Posicao:   i,
		}
	}

	if err := s.gravarEnquete(ctx, enquete, opcoes); err != nil {
		return domain.Enquete{}, err
	}

	enquete.Opcoes = opcoes
	metrics.IncPollCreated()
	s.publicar(ctx, domain.Evento{Tipo: domain.EventoEnqueteCriada, EnqueteID: enquete.ID, OcorridoEm: agora})

	return enquete, nil
}

// ObterEnquete devolve a enquete ativa com as opções na ordem de cadastro.
func (s *Service) ObterEnquete(ctx context.Context, id domain.EnqueteID) (domain.Enquete, error) {
	enquete, err := s.buscarAtiva(ctx, id)
	if err != nil {
		return domain.Enquete{}, err
	}

	opcoes, err := s.opcoes.ListByEnquete(ctx, id)
	if err != nil {
		return domain.Enquete{}, persistencia("listar opcoes", err)
	}

	enquete.Opcoes = opcoes
	return enquete, nil
}

// RegistrarVoto não consulta votos anteriores: o índice único do banco decide o duplicado,
// inclusive entre requisições concorrentes.
func (s *Service) RegistrarVoto(ctx context.Context, voto domain.Voto) (domain.ResultadoVoto, error) {
	if voto.EnqueteID == "" || voto.OpcaoID == "" || strings.TrimSpace(voto.FingerprintEleitor) == "" {
		return 0, validacao(MotivoVotoInvalido, "enquete, opcao e eleitor sao obrigatorios")
	}

	if !ids.Valid(string(voto.EnqueteID)) || !ids.Valid(string(voto.OpcaoID)) {
		return domain.VotoOpcaoInvalida, nil
	}

	if _, err := s.opcoes.FindByIDAndEnquete(ctx, voto.OpcaoID, voto.EnqueteID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.VotoOpcaoInvalida, nil
		}
		return 0, persistencia("verificar opcao", err)
	}

	agora := s.clock.Agora()
	voto.ID = domain.VotoID(s.ids.New())
	voto.CriadoEm = agora

	if err := s.votos.Registrar(ctx, voto); err != nil {
		if errors.Is(err, domain.ErrVotoDuplicado) {
			s.publicar(ctx, domain.Evento{Tipo: domain.EventoVotoDuplicado, EnqueteID: voto.EnqueteID, OpcaoID: voto.OpcaoID, OcorridoEm: agora})
			return domain.VotoJaRegistrado, nil
		}
		return 0, persistencia("registrar voto", err)
	}

	s.publicar(ctx, domain.Evento{Tipo: domain.EventoVotoAceito, EnqueteID: voto.EnqueteID, OpcaoID: voto.OpcaoID, OcorridoEm: agora})
	return domain.VotoAceito, nil
}

// Resultados recalcula a apuração a cada leitura direto das linhas de voto.
func (s *Service) Resultados(ctx context.Context, id domain.EnqueteID) (domain.ResultadoEnquete, error) {
	enquete, err := s.buscarAtiva(ctx, id)
	if err != nil {
		return domain.ResultadoEnquete{}, err
	}

	opcoes, err := s.opcoes.ListByEnquete(ctx, id)
	if err != nil {
		return domain.ResultadoEnquete{}, persistencia("listar opcoes", err)
	}

	contagem, err := s.votos.TotalPorOpcao(ctx, id)
	if err != nil {
		return domain.ResultadoEnquete{}, persistencia("contar votos", err)
	}

	return CalcularResultado(enquete, opcoes, contagem), nil
}

// Estatisticas lê os contadores mantidos pelo worker. Sem Redis não há o que ler.
func (s *Service) Estatisticas(ctx context.Context) (domain.Estatisticas, error) {
	if s.contador == nil {
		return domain.Estatisticas{}, ErrEstatisticasIndisponiveis
	}

	chaves := []string{
		CounterKeyEvento(domain.EventoEnqueteCriada),
		CounterKeyEvento(domain.EventoVotoAceito),
		CounterKeyEvento(domain.EventoVotoDuplicado),
	}
	valores, err := s.contador.ObterTodos(ctx, chaves)
	if err != nil {
		return domain.Estatisticas{}, fmt.Errorf("%w: %w", ErrEstatisticasIndisponiveis, err)
	}

	return domain.Estatisticas{
		EnquetesCriadas: valores[chaves[0]],
		VotosAceitos:    valores[chaves[1]],
		VotosDuplicados: valores[chaves[2]],
	}, nil
}

// gravarEnquete usa a transação do repositório quando existe. Sem ela, se as opções
// falharem, a enquete recém-criada é removida; falha nessa remoção só vira log.
func (s *Service) gravarEnquete(ctx context.Context, enquete domain.Enquete, opcoes []domain.Opcao) error {
	if atomico, ok := s.enquetes.(domain.AutoriaAtomica); ok {
		if err := atomico.CreateComOpcoes(ctx, enquete, opcoes); err != nil {
			return persistencia("criar enquete", err)
		}
		return nil
	}

	if err := s.enquetes.Create(ctx, enquete); err != nil {
		return persistencia("criar enquete", err)
	}

	if err := s.opcoes.BulkCreate(ctx, enquete.ID, opcoes); err != nil {
		if delErr := s.enquetes.Delete(ctx, enquete.ID); delErr != nil {
			logger.Warn("falha ao desfazer enquete sem opcoes", "enquete", enquete.ID, "err", delErr)
		}
		return persistencia("criar opcoes", err)
	}
	return nil
}

func (s *Service) buscarAtiva(ctx context.Context, id domain.EnqueteID) (domain.Enquete, error) {
	if !ids.Valid(string(id)) {
		return domain.Enquete{}, ErrEnqueteNaoEncontrada
	}

	enquete, err := s.enquetes.FindAtivaByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Enquete{}, ErrEnqueteNaoEncontrada
		}
		return domain.Enquete{}, persistencia("buscar enquete", err)
	}
	return enquete, nil
}

// publicar é best-effort: o desfecho já está gravado e não muda se a fila falhar.
func (s *Service) publicar(ctx context.Context, evento domain.Evento) {
	if s.fila == nil {
		return
	}
	if err := s.fila.PublicarEvento(ctx, evento); err != nil {
		logger.Warn("falha ao publicar evento", "tipo", evento.Tipo, "enquete", evento.EnqueteID, "err", err)
	}
}

func validarEnquete(pergunta string, textos []string) (string, []string, error) {
	pergunta = strings.TrimSpace(pergunta)
	if n := utf8.RuneCountInString(pergunta); n < 1 || n > MaxPergunta {
		return "", nil, validacao(MotivoPerguntaInvalida, fmt.Sprintf("pergunta deve ter entre 1 e %d caracteres", MaxPergunta))
	}

	if len(textos) < MinOpcoes || len(textos) > MaxOpcoes {
		return "", nil, validacao(MotivoOpcoesInvalidas, fmt.Sprintf("informe entre %d e %d opcoes", MinOpcoes, MaxOpcoes))
	}

	limpos := make([]string, len(textos))
	for i, texto := range textos {
		texto = strings.TrimSpace(texto)
		if n := utf8.RuneCountInString(texto); n < 1 || n > MaxTextoOpcao {
			return "", nil, validacao(MotivoTextoOpcaoInvalido, fmt.Sprintf("opcao %d deve ter entre 1 e %d caracteres", i+1, MaxTextoOpcao))
		}
		limpos[i] = texto
	}

	return pergunta, limpos, nil
}

var _ domain.VotingService = (*Service)(nil)
