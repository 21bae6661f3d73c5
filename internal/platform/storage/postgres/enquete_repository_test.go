package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marcelojr/enquete-rapida/internal/domain"
	"github.com/marcelojr/enquete-rapida/internal/platform/ids"
)

// setupBanco abre um SQLite em memória com o mesmo schema das migrations.
// Uma única conexão garante que todas as goroutines enxerguem o mesmo banco.
func setupBanco(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), gormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&domain.Enquete{}, &domain.Opcao{}, &domain.Voto{})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func novaEnquete(gen *ids.Generator, pergunta string) domain.Enquete {
	return domain.Enquete{
		ID:       domain.EnqueteID(gen.New()),
		Pergunta: pergunta,
		Ativa:    true,
		CriadaEm: time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestEnqueteRepository_Create_QuandoValida_DevePersistir(t *testing.T) {
	db := setupBanco(t)
	repo := NewEnqueteRepository(db)
	ctx := context.Background()
	gen := ids.NewGenerator()

	enquete := novaEnquete(gen, "Qual a melhor linguagem?")

	err := repo.Create(ctx, enquete)
	require.NoError(t, err)

	encontrada, err := repo.FindAtivaByID(ctx, enquete.ID)
	require.NoError(t, err)
	assert.Equal(t, enquete.ID, encontrada.ID)
	assert.Equal(t, "Qual a melhor linguagem?", encontrada.Pergunta)
	assert.True(t, encontrada.Ativa)
	assert.True(t, enquete.CriadaEm.Equal(encontrada.CriadaEm))
}

func TestEnqueteRepository_FindAtivaByID_QuandoNaoExiste_DeveRetornarErroNotFound(t *testing.T) {
	db := setupBanco(t)
	repo := NewEnqueteRepository(db)

	_, err := repo.FindAtivaByID(context.Background(), domain.EnqueteID("inexistente"))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEnqueteRepository_FindAtivaByID_QuandoInativa_DeveRetornarErroNotFound(t *testing.T) {
	db := setupBanco(t)
	repo := NewEnqueteRepository(db)
	ctx := context.Background()
	gen := ids.NewGenerator()

	enquete := novaEnquete(gen, "Enquete desativada")
	require.NoError(t, repo.Create(ctx, enquete))

	// Desativação acontece fora do serviço; simulamos com um UPDATE direto.
	require.NoError(t, db.Model(&enqueteModel{}).Where("id = ?", string(enquete.ID)).Update("ativa", false).Error)

	_, err := repo.FindAtivaByID(ctx, enquete.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEnqueteRepository_Create_QuandoCriadaInativa_NaoDeveAplicarDefault(t *testing.T) {
	db := setupBanco(t)
	repo := NewEnqueteRepository(db)
	ctx := context.Background()
	gen := ids.NewGenerator()

	enquete := novaEnquete(gen, "Nasce inativa")
	enquete.Ativa = false
	require.NoError(t, repo.Create(ctx, enquete))

	_, err := repo.FindAtivaByID(ctx, enquete.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEnqueteRepository_Delete_QuandoExiste_DeveRemover(t *testing.T) {
	db := setupBanco(t)
	repo := NewEnqueteRepository(db)
	ctx := context.Background()
	gen := ids.NewGenerator()

	enquete := novaEnquete(gen, "Vai ser removida")
	require.NoError(t, repo.Create(ctx, enquete))

	require.NoError(t, repo.Delete(ctx, enquete.ID))

	_, err := repo.FindAtivaByID(ctx, enquete.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEnqueteRepository_Delete_QuandoNaoExiste_NaoDeveFalhar(t *testing.T) {
	db := setupBanco(t)
	repo := NewEnqueteRepository(db)

	err := repo.Delete(context.Background(), domain.EnqueteID("inexistente"))

	assert.NoError(t, err)
}

func TestEnqueteRepository_CreateComOpcoes_DeveGravarTudoNaMesmaTransacao(t *testing.T) {
	db := setupBanco(t)
	repo := NewEnqueteRepository(db)
	ctx := context.Background()
	gen := ids.NewGenerator()

	enquete := novaEnquete(gen, "Transacional?")
	opcoes := []domain.Opcao{
		{ID: domain.OpcaoID(gen.New()), Texto: "Sim", Posicao: 0},
		{ID: domain.OpcaoID(gen.New()), Texto: "Não", Posicao: 1},
	}

	require.NoError(t, repo.CreateComOpcoes(ctx, enquete, opcoes))

	listadas, err := NewOpcaoRepository(db).ListByEnquete(ctx, enquete.ID)
	require.NoError(t, err)
	require.Len(t, listadas, 2)
	assert.Equal(t, enquete.ID, listadas[0].EnqueteID)
	assert.Equal(t, "Não", listadas[1].Texto)
}

func TestEnqueteRepository_CreateComOpcoes_QuandoOpcaoFalha_NaoDeveSobrarEnquete(t *testing.T) {
	db := setupBanco(t)
	repo := NewEnqueteRepository(db)
	ctx := context.Background()
	gen := ids.NewGenerator()

	enquete := novaEnquete(gen, "Vai desfazer?")
	repetido := domain.OpcaoID(gen.New())
	opcoes := []domain.Opcao{
		{ID: repetido, Texto: "A", Posicao: 0},
		{ID: repetido, Texto: "B", Posicao: 1},
	}

	err := repo.CreateComOpcoes(ctx, enquete, opcoes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gorm opcoes")

	_, err = repo.FindAtivaByID(ctx, enquete.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var total int64
	require.NoError(t, db.Table("opcoes").Count(&total).Error)
	assert.Zero(t, total)
}
