// Pacote migrations centraliza as versões gormigrate aplicadas na inicialização.
package migrations

import (
	"fmt"

	gormigrate "github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/marcelojr/enquete-rapida/internal/domain"
)

// Migrations lista as versões na ordem de aplicação.
func Migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "202501150001_enquetes_opcoes_votos",
			Migrate: func(tx *gorm.DB) error {
				// O índice único idx_votos_enquete_eleitor nasce aqui junto com a tabela de votos.
				return tx.AutoMigrate(&domain.Enquete{}, &domain.Opcao{}, &domain.Voto{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("votos", "opcoes", "enquetes")
			},
		},
	}
}

func Run(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("migrations: db nulo")
	}

	m := gormigrate.New(db, gormigrate.DefaultOptions, Migrations())
	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migrations: falha ao aplicar: %w", err)
	}

	return nil
}
