package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	voteRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enquete_vote_requests_total",
		Help: "Total de tentativas de voto por desfecho",
	}, []string{"status"})

	pollsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enquete_polls_created_total",
		Help: "Total de enquetes criadas",
	})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "enquete_http_request_duration_seconds",
		Help:    "Latencia das requisicoes HTTP por rota e status",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})

	eventsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enquete_events_processed_total",
		Help: "Total de eventos processados pelo worker",
	}, []string{"tipo"})

	eventProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "enquete_event_processing_duration_seconds",
		Help:    "Tempo para processar um evento no worker",
		Buckets: prometheus.DefBuckets,
	})
)

func ObserveVoteRequest(status string) {
	voteRequestsTotal.WithLabelValues(status).Inc()
}

func IncPollCreated() {
	pollsCreatedTotal.Inc()
}

func ObserveHTTPRequest(route, status string, seconds float64) {
	httpRequestDuration.WithLabelValues(route, status).Observe(seconds)
}

func IncEventProcessed(tipo string) {
	eventsProcessedTotal.WithLabelValues(tipo).Inc()
}

func ObserveProcessingDuration(seconds float64) {
	eventProcessingDuration.Observe(seconds)
}
