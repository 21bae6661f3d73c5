// Pacote postgres implementa a camada de persistência das enquetes via GORM.
package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config padrão compartilhada entre produção e testes: erros traduzidos e log do GORM só em WARN.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

// Pool limita as conexões abertas; zero em qualquer campo mantém o padrão.
type Pool struct {
	MaxConns        int
	ConnMaxLifetime time.Duration
}

func (p Pool) comPadroes() Pool {
	if p.MaxConns <= 0 {
		p.MaxConns = 25
	}
	if p.ConnMaxLifetime <= 0 {
		p.ConnMaxLifetime = time.Hour
	}
	return p
}

func Open(ctx context.Context, dsn string, pool Pool) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("postgres gorm: abrir conexao: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres gorm: obter sql.DB: %w", err)
	}

	// Cada voto é um INSERT curto; ociosas iguais às abertas evitam reabrir conexão em pico.
	pool = pool.comPadroes()
	sqlDB.SetMaxOpenConns(pool.MaxConns)
	sqlDB.SetMaxIdleConns(pool.MaxConns)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)

	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctxPing); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("postgres gorm: ping falhou: %w", err)
	}

	return gormDB, nil
}
