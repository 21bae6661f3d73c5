package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/marcelojr/enquete-rapida/internal/domain"
)

// VotoRepository grava votos e expõe a contagem agrupada por opção.
type VotoRepository struct {
	db *gorm.DB
}

func NewVotoRepository(db *gorm.DB) *VotoRepository {
	return &VotoRepository{db: db}
}

type votoModel struct {
	ID                 string    `gorm:"column:id;primaryKey"`
	EnqueteID          string    `gorm:"column:enquete_id"`
	OpcaoID            string    `gorm:"column:opcao_id"`
	FingerprintEleitor string    `gorm:"column:fingerprint_eleitor"`
	CriadoEm           time.Time `gorm:"column:criado_em"`
}

func (votoModel) TableName() string {
	return "votos"
}

func fromDomainVoto(v domain.Voto) votoModel {
	return votoModel{
		ID:                 string(v.ID),
		EnqueteID:          string(v.EnqueteID),
		OpcaoID:            string(v.OpcaoID),
		FingerprintEleitor: v.FingerprintEleitor,
		CriadoEm:           v.CriadoEm,
	}
}

// Registrar não consulta antes de inserir: quem decide o duplicado é o índice único no commit.
func (r *VotoRepository) Registrar(ctx context.Context, voto domain.Voto) error {
	model := fromDomainVoto(voto)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrVotoDuplicado
		}
		return fmt.Errorf("gorm votos: inserir: %w", err)
	}
	return nil
}

func (r *VotoRepository) TotalPorOpcao(ctx context.Context, enqueteID domain.EnqueteID) (map[domain.OpcaoID]int64, error) {
	type resultado struct {
		OpcaoID string
		Total   int64
	}
	var res []resultado
	if err := r.db.WithContext(ctx).
		Model(&votoModel{}).
		Select("opcao_id AS opcao_id, COUNT(*) AS total").
		Where("enquete_id = ?", string(enqueteID)).
		Group("opcao_id").
		Scan(&res).Error; err != nil {
		return nil, fmt.Errorf("gorm votos: total por opcao: %w", err)
	}

	totais := make(map[domain.OpcaoID]int64, len(res))
	for _, item := range res {
		totais[domain.OpcaoID(item.OpcaoID)] = item.Total
	}
	return totais, nil
}

var _ domain.VotoRepository = (*VotoRepository)(nil)
