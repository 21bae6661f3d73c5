// Pacote httpapi expõe os endpoints JSON da enquete e traduz erros do serviço em status HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/marcelojr/enquete-rapida/internal/app/voting"
	"github.com/marcelojr/enquete-rapida/internal/domain"
	"github.com/marcelojr/enquete-rapida/internal/platform/metrics"
)

// Limite do corpo aceito; uma enquete válida cabe com folga.
const maxBody = 64 << 10

// Códigos de erro devolvidos no campo "error".
const (
	erroJSONInvalido         = "invalid_json"
	erroPollIDAusente        = "missing_poll_id"
	erroOpcaoInvalida        = "invalid_option"
	erroJaVotou              = "already_voted"
	erroEnqueteNaoEncontrada = "poll_not_found"
	erroInterno              = "internal_error"
	erroMetodo               = "method_not_allowed"
	erroEstatisticas         = "stats_unavailable"
)

// API empacota handlers HTTP ligados ao serviço de votação e ao logger.
type API struct {
	service domain.VotingService
	logger  *slog.Logger
}

func New(service domain.VotingService, logger *slog.Logger) *API {
	return &API{service: service, logger: logger}
}

func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", a.handleHealthz)
	mux.Handle("/create-poll", a.instrumentar("/create-poll", a.apenas(http.MethodPost, a.criarEnquete)))
	mux.Handle("/get-poll", a.instrumentar("/get-poll", a.apenas(http.MethodGet, a.obterEnquete)))
	mux.Handle("/cast-vote", a.instrumentar("/cast-vote", a.apenas(http.MethodPost, a.registrarVoto)))
	mux.Handle("/get-results", a.instrumentar("/get-results", a.apenas(http.MethodGet, a.obterResultados)))
	mux.Handle("/stats", a.instrumentar("/stats", a.apenas(http.MethodGet, a.obterEstatisticas)))
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type criarEnqueteRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type criarEnqueteResponse struct {
	PollID string `json:"pollId"`
}

func (a *API) criarEnquete(w http.ResponseWriter, r *http.Request) {
	var req criarEnqueteRequest
	if err := decodificar(w, r, &req); err != nil {
		codigo := erroJSONInvalido
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			codigo = voting.MotivoOpcoesInvalidas
			if typeErr.Field == "question" {
				codigo = voting.MotivoPerguntaInvalida
			}
		}
		a.logger.Warn("payload invalido ao criar enquete", "err", err)
		responderCodigo(w, http.StatusBadRequest, codigo)
		return
	}

	enquete, err := a.service.CriarEnquete(r.Context(), req.Question, req.Options)
	if err != nil {
		a.responderErro(w, err, "erro ao criar enquete")
		return
	}

	a.logger.Info("enquete criada", "enquete", enquete.ID, "opcoes", len(enquete.Opcoes))
	responderJSON(w, http.StatusCreated, criarEnqueteResponse{PollID: string(enquete.ID)})
}

type opcaoResponse struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Position int    `json:"position"`
}

type enqueteResponse struct {
	ID        string          `json:"id"`
	Question  string          `json:"question"`
	CreatedAt time.Time       `json:"createdAt"`
	Options   []opcaoResponse `json:"options"`
}

func (a *API) obterEnquete(w http.ResponseWriter, r *http.Request) {
	id, ok := pollIDDaQuery(w, r)
	if !ok {
		return
	}

	enquete, err := a.service.ObterEnquete(r.Context(), id)
	if err != nil {
		a.responderErro(w, err, "erro ao obter enquete")
		return
	}

	resp := enqueteResponse{
		ID:        string(enquete.ID),
		Question:  enquete.Pergunta,
		CreatedAt: enquete.CriadaEm,
		Options:   make([]opcaoResponse, len(enquete.Opcoes)),
	}
	for i, opcao := range enquete.Opcoes {
		resp.Options[i] = opcaoResponse{ID: string(opcao.ID), Text: opcao.Texto, Position: opcao.Posicao}
	}

	responderJSON(w, http.StatusOK, resp)
}

type votoRequest struct {
	PollID           string `json:"pollId"`
	OptionID         string `json:"optionId"`
	VoterFingerprint string `json:"voterFingerprint"`
}

func (a *API) registrarVoto(w http.ResponseWriter, r *http.Request) {
	var req votoRequest
	if err := decodificar(w, r, &req); err != nil {
		codigo := erroJSONInvalido
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			codigo = voting.MotivoVotoInvalido
		}
		metrics.ObserveVoteRequest("invalid_payload")
		a.logger.Warn("payload invalido ao registrar voto", "err", err)
		responderCodigo(w, http.StatusBadRequest, codigo)
		return
	}

	resultado, err := a.service.RegistrarVoto(r.Context(), domain.Voto{
		EnqueteID:          domain.EnqueteID(req.PollID),
		OpcaoID:            domain.OpcaoID(req.OptionID),
		FingerprintEleitor: req.VoterFingerprint,
	})
	if err != nil {
		metrics.ObserveVoteRequest(statusFromError(err))
		a.responderErro(w, err, "falha ao registrar voto", "enquete", req.PollID, "opcao", req.OptionID)
		return
	}

	metrics.ObserveVoteRequest(resultado.String())

	switch resultado {
	case domain.VotoAceito:
		a.logger.Info("voto aceito", "enquete", req.PollID, "opcao", req.OptionID)
		responderJSON(w, http.StatusOK, map[string]bool{"success": true})
	case domain.VotoJaRegistrado:
		responderCodigo(w, http.StatusConflict, erroJaVotou)
	default:
		a.logger.Warn("voto em opcao invalida", "enquete", req.PollID, "opcao", req.OptionID)
		responderCodigo(w, http.StatusBadRequest, erroOpcaoInvalida)
	}
}

type resultadoOpcaoResponse struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Position   int    `json:"position"`
	VoteCount  int64  `json:"voteCount"`
	Percentage int    `json:"percentage"`
}

type resultadoResponse struct {
	PollID     string                   `json:"pollId"`
	Question   string                   `json:"question"`
	TotalVotes int64                    `json:"totalVotes"`
	Options    []resultadoOpcaoResponse `json:"options"`
}

func (a *API) obterResultados(w http.ResponseWriter, r *http.Request) {
	id, ok := pollIDDaQuery(w, r)
	if !ok {
		return
	}

	resultado, err := a.service.Resultados(r.Context(), id)
	if err != nil {
		a.responderErro(w, err, "erro ao obter resultados")
		return
	}

	resp := resultadoResponse{
		PollID:     string(resultado.EnqueteID),
		Question:   resultado.Pergunta,
		TotalVotes: resultado.TotalVotos,
		Options:    make([]resultadoOpcaoResponse, len(resultado.Opcoes)),
	}
	for i, opcao := range resultado.Opcoes {
		resp.Options[i] = resultadoOpcaoResponse{
			ID:         string(opcao.OpcaoID),
			Text:       opcao.Texto,
			Position:   opcao.Posicao,
			VoteCount:  opcao.TotalVotos,
			Percentage: opcao.Percentual,
		}
	}

	responderJSON(w, http.StatusOK, resp)
}

type estatisticasResponse struct {
	PollsCreated    int64 `json:"pollsCreated"`
	VotesAccepted   int64 `json:"votesAccepted"`
	VotesDuplicated int64 `json:"votesDuplicated"`
}

func (a *API) obterEstatisticas(w http.ResponseWriter, r *http.Request) {
	stats, err := a.service.Estatisticas(r.Context())
	if err != nil {
		a.logger.Warn("estatisticas indisponiveis", "err", err)
		responderCodigo(w, http.StatusServiceUnavailable, erroEstatisticas)
		return
	}

	responderJSON(w, http.StatusOK, estatisticasResponse{
		PollsCreated:    stats.EnquetesCriadas,
		VotesAccepted:   stats.VotosAceitos,
		VotesDuplicated: stats.VotosDuplicados,
	})
}

func pollIDDaQuery(w http.ResponseWriter, r *http.Request) (domain.EnqueteID, bool) {
	id := strings.TrimSpace(r.URL.Query().Get("pollId"))
	if id == "" {
		responderCodigo(w, http.StatusBadRequest, erroPollIDAusente)
		return "", false
	}
	return domain.EnqueteID(id), true
}

// decodificar rejeita corpo vazio, corpo grande demais e lixo depois do objeto JSON.
func decodificar(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("conteudo extra apos o objeto JSON")
	}
	return nil
}

func responderJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func responderCodigo(w http.ResponseWriter, status int, codigo string) {
	responderJSON(w, status, map[string]string{"error": codigo})
}

// responderErro nunca devolve detalhes internos: falhas de persistência viram internal_error.
func (a *API) responderErro(w http.ResponseWriter, err error, msg string, attrs ...any) {
	var vErr *voting.ValidationError
	switch {
	case errors.As(err, &vErr):
		a.logger.Warn(msg, append(attrs, "err", err)...)
		responderCodigo(w, http.StatusBadRequest, vErr.Reason)
	case errors.Is(err, voting.ErrEnqueteNaoEncontrada):
		responderCodigo(w, http.StatusNotFound, erroEnqueteNaoEncontrada)
	default:
		a.logger.Error(msg, append(attrs, "err", err)...)
		responderCodigo(w, http.StatusInternalServerError, erroInterno)
	}
}

func statusFromError(err error) string {
	switch {
	case errors.Is(err, voting.ErrValidacao):
		return "invalid"
	case errors.Is(err, voting.ErrPersistencia):
		return "persistence_error"
	default:
		return "error"
	}
}
