// Worker que consome a fila de eventos da API e mantém os contadores expostos em /stats.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcelojr/enquete-rapida/internal/app/worker"
	"github.com/marcelojr/enquete-rapida/internal/domain"
	"github.com/marcelojr/enquete-rapida/internal/platform/config"
	"github.com/marcelojr/enquete-rapida/internal/platform/health"
	"github.com/marcelojr/enquete-rapida/internal/platform/logger"
	redisstorage "github.com/marcelojr/enquete-rapida/internal/platform/storage/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuracao invalida", "err", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	if !cfg.RedisEnabled {
		logger.Fatal("worker exige REDIS_ENABLED=true")
	}

	// Fila e contador vivem na mesma instância Redis; o worker não toca no Postgres.
	redisClient, err := redisstorage.NewClient(ctx, redisstorage.ClientConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		PoolSize: cfg.RedisPoolSize,
	})
	if err != nil {
		logger.Fatal("falha ao conectar no redis", "err", err)
	}
	defer redisClient.Close()

	contador := redisstorage.NewContador(redisClient, cfg.ContadorKeyPrefix)
	fila := redisstorage.NewFila(redisClient, cfg.FilaKey)
	checker := health.NewChecker(nil, redisClient)

	if cfg.WorkerMetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/readyz", checker.ReadyHandler())
		srv := &http.Server{
			Addr:              cfg.WorkerMetricsAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			logger.Info("worker metrics ouvindo", "addr", cfg.WorkerMetricsAddress)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("erro no servidor de metrics do worker", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if pendentes, err := fila.Pendentes(ctx); err == nil {
		logger.Info("worker iniciado, aguardando eventos", "pendentes", pendentes)
	}

	processor := worker.NewEventProcessor(contador)
	err = fila.ConsumirEventos(ctx, func(ctx context.Context, evento domain.Evento) error {
		// Falha num evento não derruba o worker; os contadores são telemetria, não fonte de verdade.
		if err := processor.Process(ctx, evento); err != nil {
			logger.Error("erro ao processar evento", "tipo", evento.Tipo, "enquete", evento.EnqueteID, "err", err)
		}
		return nil
	})

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		logger.Fatal("worker finalizado com erro", "err", err)
	}

	logger.Info("worker finalizado")
}
