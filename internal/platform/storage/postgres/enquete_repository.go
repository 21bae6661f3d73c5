package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/marcelojr/enquete-rapida/internal/domain"
)

// EnqueteRepository persiste a linha da enquete e, na criação transacional, também as opções.
type EnqueteRepository struct {
	db *gorm.DB
}

func NewEnqueteRepository(db *gorm.DB) *EnqueteRepository {
	return &EnqueteRepository{db: db}
}

type enqueteModel struct {
	ID       string    `gorm:"column:id;primaryKey"`
	Pergunta string    `gorm:"column:pergunta"`
	Ativa    bool      `gorm:"column:ativa"`
	CriadaEm time.Time `gorm:"column:criada_em"`
}

func (enqueteModel) TableName() string {
	return "enquetes"
}

func (m enqueteModel) toDomain() domain.Enquete {
	return domain.Enquete{
		ID:       domain.EnqueteID(m.ID),
		Pergunta: m.Pergunta,
		Ativa:    m.Ativa,
		CriadaEm: m.CriadaEm,
	}
}

func fromDomainEnquete(e domain.Enquete) enqueteModel {
	return enqueteModel{
		ID:       string(e.ID),
		Pergunta: e.Pergunta,
		Ativa:    e.Ativa,
		CriadaEm: e.CriadaEm,
	}
}

func (r *EnqueteRepository) Create(ctx context.Context, e domain.Enquete) error {
	model := fromDomainEnquete(e)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("gorm enquetes: inserir: %w", err)
	}
	return nil
}

// CreateComOpcoes grava a enquete e as opções na mesma transação.
func (r *EnqueteRepository) CreateComOpcoes(ctx context.Context, e domain.Enquete, opcoes []domain.Opcao) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := fromDomainEnquete(e)
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("gorm enquetes: inserir: %w", err)
		}

		models := make([]opcaoModel, len(opcoes))
		for i, opcao := range opcoes {
			opcao.EnqueteID = e.ID
			models[i] = fromDomainOpcao(opcao)
		}
		if err := tx.Create(&models).Error; err != nil {
			return fmt.Errorf("gorm opcoes: bulk create: %w", err)
		}
		return nil
	})
}

// Delete existe apenas para a compensação da criação; opções caem em cascata.
func (r *EnqueteRepository) Delete(ctx context.Context, id domain.EnqueteID) error {
	if err := r.db.WithContext(ctx).
		Where("id = ?", string(id)).
		Delete(&enqueteModel{}).Error; err != nil {
		return fmt.Errorf("gorm enquetes: remover: %w", err)
	}
	return nil
}

func (r *EnqueteRepository) FindAtivaByID(ctx context.Context, id domain.EnqueteID) (domain.Enquete, error) {
	var model enqueteModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND ativa = ?", string(id), true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Enquete{}, domain.ErrNotFound
		}
		return domain.Enquete{}, fmt.Errorf("gorm enquetes: buscar id: %w", err)
	}
	return model.toDomain(), nil
}

var (
	_ domain.EnqueteRepository = (*EnqueteRepository)(nil)
	_ domain.AutoriaAtomica    = (*EnqueteRepository)(nil)
)
