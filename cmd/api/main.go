// Executável principal da API: carrega a configuração, inicializa dependências e sobe o servidor HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/marcelojr/enquete-rapida/internal/app/httpapi"
	"github.com/marcelojr/enquete-rapida/internal/app/voting"
	"github.com/marcelojr/enquete-rapida/internal/domain"
	"github.com/marcelojr/enquete-rapida/internal/platform/clock"
	"github.com/marcelojr/enquete-rapida/internal/platform/config"
	"github.com/marcelojr/enquete-rapida/internal/platform/health"
	"github.com/marcelojr/enquete-rapida/internal/platform/ids"
	"github.com/marcelojr/enquete-rapida/internal/platform/logger"
	"github.com/marcelojr/enquete-rapida/internal/platform/migrations"
	postgresstorage "github.com/marcelojr/enquete-rapida/internal/platform/storage/postgres"
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

	db, err := postgresstorage.Open(ctx, cfg.PostgresDSN(), postgresstorage.Pool{
		MaxConns:        cfg.PostgresMaxConns,
		ConnMaxLifetime: cfg.PostgresConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal("falha ao conectar no postgres", "err", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("falha ao resgatar sql.DB", "err", err)
	}
	defer sqlDB.Close()

	if cfg.AutoMigrate {
		if err := migrations.Run(db); err != nil {
			logger.Fatal("falha na migracao automatica", "err", err)
		}
	}

	// Redis só alimenta a fila de eventos e as estatísticas; votar e apurar dependem apenas do Postgres.
	var (
		redisClient *goredis.Client
		contador    domain.Contador
		fila        domain.Fila
	)
	if cfg.RedisEnabled {
		redisClient, err = redisstorage.NewClient(ctx, redisstorage.ClientConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			PoolSize: cfg.RedisPoolSize,
		})
		if err != nil {
			logger.Fatal("falha ao conectar no redis", "err", err)
		}
		defer redisClient.Close()

		contador = redisstorage.NewContador(redisClient, cfg.ContadorKeyPrefix)
		fila = redisstorage.NewFila(redisClient, cfg.FilaKey)
	} else {
		logger.Warn("redis desligado: eventos e /stats indisponiveis")
	}

	servico := voting.NewService(
		postgresstorage.NewEnqueteRepository(db),
		postgresstorage.NewOpcaoRepository(db),
		postgresstorage.NewVotoRepository(db),
		contador,
		fila,
		clock.NewSystemClock(),
		ids.NewGenerator(),
	)

	mux := http.NewServeMux()
	checker := health.NewChecker(sqlDB, redisClient)

	api := httpapi.New(servico, logger.L())
	api.Register(mux)
	mux.HandleFunc("/readyz", checker.ReadyHandler())
	mux.Handle("/metrics", promhttp.Handler())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           corsHandler.Handler(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("erro ao encerrar servidor", "err", err)
		}
	}()

	logger.Info("api ouvindo", "addr", cfg.HTTPAddress, "redis", cfg.RedisEnabled)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("erro no servidor", "err", err)
	}

	logger.Info("api finalizada")
}
