package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/marcelojr/enquete-rapida/internal/platform/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// instrumentar registra latência por rota e status e loga cada requisição concluída.
func (a *API) instrumentar(rota string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inicio := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		duracao := time.Since(inicio)
		metrics.ObserveHTTPRequest(rota, strconv.Itoa(rec.status), duracao.Seconds())
		a.logger.Debug("requisicao concluida",
			"method", r.Method,
			"path", rota,
			"status", rec.status,
			"duration_ms", duracao.Milliseconds(),
		)
	})
}

// apenas responde 405 em JSON para qualquer método diferente do esperado.
func (a *API) apenas(metodo string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != metodo {
			w.Header().Set("Allow", metodo)
			responderCodigo(w, http.StatusMethodNotAllowed, erroMetodo)
			return
		}
		next(w, r)
	}
}
