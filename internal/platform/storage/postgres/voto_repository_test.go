package postgres

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/marcelojr/enquete-rapida/internal/domain"
	"github.com/marcelojr/enquete-rapida/internal/platform/ids"
)

func novoVoto(gen *ids.Generator, enqueteID domain.EnqueteID, opcaoID domain.OpcaoID, fingerprint string) domain.Voto {
	return domain.Voto{
		ID:                 domain.VotoID(gen.New()),
		EnqueteID:          enqueteID,
		OpcaoID:            opcaoID,
		FingerprintEleitor: fingerprint,
		CriadoEm:           time.Now().UTC(),
	}
}

func contarVotos(t *testing.T, db *gorm.DB, enqueteID domain.EnqueteID) int64 {
	t.Helper()
	var total int64
	require.NoError(t, db.Model(&votoModel{}).Where("enquete_id = ?", string(enqueteID)).Count(&total).Error)
	return total
}

func TestVotoRepository_Registrar_QuandoValido_DevePersistirComSucesso(t *testing.T) {
	db := setupBanco(t)
	repo := NewVotoRepository(db)
	gen := ids.NewGenerator()

	enqueteID := domain.EnqueteID(gen.New())
	voto := novoVoto(gen, enqueteID, domain.OpcaoID(gen.New()), "fp-1")

	err := repo.Registrar(context.Background(), voto)

	require.NoError(t, err)
	assert.Equal(t, int64(1), contarVotos(t, db, enqueteID))
}

func TestVotoRepository_Registrar_QuandoMesmoEleitorNaMesmaEnquete_DeveRetornarErrVotoDuplicado(t *testing.T) {
	db := setupBanco(t)
	repo := NewVotoRepository(db)
	ctx := context.Background()
	gen := ids.NewGenerator()

	enqueteID := domain.EnqueteID(gen.New())
	require.NoError(t, repo.Registrar(ctx, novoVoto(gen, enqueteID, domain.OpcaoID(gen.New()), "fp-1")))

	// Mesmo eleitor tentando outra opção da mesma enquete.
	err := repo.Registrar(ctx, novoVoto(gen, enqueteID, domain.OpcaoID(gen.New()), "fp-1"))

	assert.ErrorIs(t, err, domain.ErrVotoDuplicado)
	assert.Equal(t, int64(1), contarVotos(t, db, enqueteID))
}

func TestVotoRepository_Registrar_QuandoMesmoEleitorEmEnquetesDiferentes_DeveAceitarAmbos(t *testing.T) {
	db := setupBanco(t)
	repo := NewVotoRepository(db)
	ctx := context.Background()
	gen := ids.NewGenerator()

	enqueteA := domain.EnqueteID(gen.New())
	enqueteB := domain.EnqueteID(gen.New())

	require.NoError(t, repo.Registrar(ctx, novoVoto(gen, enqueteA, domain.OpcaoID(gen.New()), "fp-compartilhado")))
	require.NoError(t, repo.Registrar(ctx, novoVoto(gen, enqueteB, domain.OpcaoID(gen.New()), "fp-compartilhado")))

	assert.Equal(t, int64(1), contarVotos(t, db, enqueteA))
	assert.Equal(t, int64(1), contarVotos(t, db, enqueteB))
}

func TestVotoRepository_Registrar_QuandoConcorrenteParaMesmoEleitor_DeveGravarApenasUm(t *testing.T) {
	db := setupBanco(t)
	repo := NewVotoRepository(db)
	gen := ids.NewGenerator()

	enqueteID := domain.EnqueteID(gen.New())
	opcaoID := domain.OpcaoID(gen.New())

	const tentativas = 20
	erros := make([]error, tentativas)
	var wg sync.WaitGroup
	for i := 0; i < tentativas; i++ {
		voto := novoVoto(gen, enqueteID, opcaoID, "fp-clique-duplo")
		wg.Add(1)
		go func(i int, voto domain.Voto) {
			defer wg.Done()
			erros[i] = repo.Registrar(context.Background(), voto)
		}(i, voto)
	}
	wg.Wait()

	aceitos, duplicados := 0, 0
	for _, err := range erros {
		switch {
		case err == nil:
			aceitos++
		case errors.Is(err, domain.ErrVotoDuplicado):
			duplicados++
		default:
			t.Fatalf("erro inesperado: %v", err)
		}
	}

	assert.Equal(t, 1, aceitos)
	assert.Equal(t, tentativas-1, duplicados)
	assert.Equal(t, int64(1), contarVotos(t, db, enqueteID))
}

func TestVotoRepository_TotalPorOpcao_QuandoExistemVotos_DeveAgruparCorretamente(t *testing.T) {
	db := setupBanco(t)
	repo := NewVotoRepository(db)
	ctx := context.Background()
	gen := ids.NewGenerator()

	enqueteID := domain.EnqueteID(gen.New())
	opcaoA := domain.OpcaoID(gen.New())
	opcaoB := domain.OpcaoID(gen.New())

	votos := []domain.Voto{
		novoVoto(gen, enqueteID, opcaoA, "fp-1"),
		novoVoto(gen, enqueteID, opcaoA, "fp-2"),
		novoVoto(gen, enqueteID, opcaoA, "fp-3"),
		novoVoto(gen, enqueteID, opcaoB, "fp-4"),
		// Voto de outra enquete não entra na contagem.
		novoVoto(gen, domain.EnqueteID(gen.New()), opcaoA, "fp-5"),
	}
	for _, voto := range votos {
		require.NoError(t, repo.Registrar(ctx, voto))
	}

	totais, err := repo.TotalPorOpcao(ctx, enqueteID)

	require.NoError(t, err)
	assert.Len(t, totais, 2)
	assert.Equal(t, int64(3), totais[opcaoA])
	assert.Equal(t, int64(1), totais[opcaoB])
}

func TestVotoRepository_TotalPorOpcao_QuandoNaoExistemVotos_DeveRetornarMapaVazio(t *testing.T) {
	db := setupBanco(t)
	repo := NewVotoRepository(db)

	totais, err := repo.TotalPorOpcao(context.Background(), domain.EnqueteID("sem-votos"))

	require.NoError(t, err)
	assert.Empty(t, totais)
}

// setupPostgresMock liga o dialeto Postgres do GORM a um sqlmock para reproduzir erros do servidor.
func setupPostgresMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig())
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db, mock
}

func TestVotoRepository_Registrar_QuandoPostgresRetorna23505_DeveRetornarErrVotoDuplicado(t *testing.T) {
	db, mock := setupPostgresMock(t)
	repo := NewVotoRepository(db)
	gen := ids.NewGenerator()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "votos"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_votos_enquete_eleitor"})
	mock.ExpectRollback()

	err := repo.Registrar(context.Background(), novoVoto(gen, domain.EnqueteID(gen.New()), domain.OpcaoID(gen.New()), "fp-1"))

	assert.ErrorIs(t, err, domain.ErrVotoDuplicado)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVotoRepository_Registrar_QuandoPostgresFalhaDeOutraForma_DeveEmbrulharErro(t *testing.T) {
	db, mock := setupPostgresMock(t)
	repo := NewVotoRepository(db)
	gen := ids.NewGenerator()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "votos"`)).
		WillReturnError(&pgconn.PgError{Code: "57P01", Message: "terminating connection"})
	mock.ExpectRollback()

	err := repo.Registrar(context.Background(), novoVoto(gen, domain.EnqueteID(gen.New()), domain.OpcaoID(gen.New()), "fp-1"))

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrVotoDuplicado)
	assert.Contains(t, err.Error(), "gorm votos: inserir")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(errors.New("qualquer")))
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
}
