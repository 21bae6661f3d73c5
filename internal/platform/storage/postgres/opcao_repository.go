package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/marcelojr/enquete-rapida/internal/domain"
)

// OpcaoRepository persiste as opções de uma enquete preservando a posição de cadastro.
type OpcaoRepository struct {
	db *gorm.DB
}

func NewOpcaoRepository(db *gorm.DB) *OpcaoRepository {
	return &OpcaoRepository{db: db}
}

type opcaoModel struct {
	ID        string `gorm:"column:id;primaryKey"`
	EnqueteID string `gorm:"column:enquete_id"`
	Texto     string `gorm:"column:texto"`
	Posicao   int    `gorm:"column:posicao"`
}

func (opcaoModel) TableName() string {
	return "opcoes"
}

func (m opcaoModel) toDomain() domain.Opcao {
	return domain.Opcao{
		ID:        domain.OpcaoID(m.ID),
		EnqueteID: domain.EnqueteID(m.EnqueteID),
		Texto:     m.Texto,
		Posicao:   m.Posicao,
	}
}

func fromDomainOpcao(o domain.Opcao) opcaoModel {
	return opcaoModel{
		ID:        string(o.ID),
		EnqueteID: string(o.EnqueteID),
		Texto:     o.Texto,
		Posicao:   o.Posicao,
	}
}

// BulkCreate grava todas as opções num único INSERT: ou entram todas, ou nenhuma.
func (r *OpcaoRepository) BulkCreate(ctx context.Context, enqueteID domain.EnqueteID, opcoes []domain.Opcao) error {
	if len(opcoes) == 0 {
		return nil
	}

	models := make([]opcaoModel, len(opcoes))
	for i, opcao := range opcoes {
		if opcao.EnqueteID == "" {
			opcao.EnqueteID = enqueteID
		}
		models[i] = fromDomainOpcao(opcao)
	}

	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return fmt.Errorf("gorm opcoes: bulk create: %w", err)
	}
	return nil
}

// FindByIDAndEnquete só encontra a opção se ela pertencer à enquete informada.
func (r *OpcaoRepository) FindByIDAndEnquete(ctx context.Context, id domain.OpcaoID, enqueteID domain.EnqueteID) (domain.Opcao, error) {
	var model opcaoModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND enquete_id = ?", string(id), string(enqueteID)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Opcao{}, domain.ErrNotFound
		}
		return domain.Opcao{}, fmt.Errorf("gorm opcoes: buscar por enquete: %w", err)
	}
	return model.toDomain(), nil
}

func (r *OpcaoRepository) ListByEnquete(ctx context.Context, enqueteID domain.EnqueteID) ([]domain.Opcao, error) {
	var models []opcaoModel
	if err := r.db.WithContext(ctx).
		// A ordem por posição é contrato de exibição, não detalhe de implementação.
		Where("enquete_id = ?", string(enqueteID)).
		Order("posicao ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm opcoes: listar: %w", err)
	}

	result := make([]domain.Opcao, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

var _ domain.OpcaoRepository = (*OpcaoRepository)(nil)
