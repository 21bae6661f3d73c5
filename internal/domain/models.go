package domain

import (
	"time"
)

type (
	EnqueteID string
	OpcaoID   string
	VotoID    string
)

// Enquete só é exposta enquanto Ativa; a desativação acontece fora do serviço.
type Enquete struct {
	ID       EnqueteID `gorm:"column:id;type:char(26);primaryKey"`
	Pergunta string    `gorm:"column:pergunta;type:varchar(500);not null"`
	Ativa    bool      `gorm:"column:ativa;not null;default:true"`
	CriadaEm time.Time `gorm:"column:criada_em;not null"`
	Opcoes   []Opcao   `gorm:"foreignKey:EnqueteID;constraint:OnDelete:CASCADE"`
}

type Opcao struct {
	ID        OpcaoID   `gorm:"column:id;type:char(26);primaryKey"`
	EnqueteID EnqueteID `gorm:"column:enquete_id;type:char(26);not null;index:idx_opcoes_enquete_posicao,priority:1"`
	Texto     string    `gorm:"column:texto;type:varchar(200);not null"`
	Posicao   int       `gorm:"column:posicao;not null;index:idx_opcoes_enquete_posicao,priority:2"`
}

// Voto é imutável. O índice único (enquete_id, fingerprint_eleitor) garante no máximo um voto por eleitor.
type Voto struct {
	ID                 VotoID    `gorm:"column:id;type:char(26);primaryKey"`
	EnqueteID          EnqueteID `gorm:"column:enquete_id;type:char(26);not null;uniqueIndex:idx_votos_enquete_eleitor,priority:1;index:idx_votos_enquete_opcao,priority:1"`
	OpcaoID            OpcaoID   `gorm:"column:opcao_id;type:char(26);not null;index:idx_votos_enquete_opcao,priority:2"`
	FingerprintEleitor string    `gorm:"column:fingerprint_eleitor;type:varchar(255);not null;uniqueIndex:idx_votos_enquete_eleitor,priority:2"`
	CriadoEm           time.Time `gorm:"column:criado_em;not null"`
}

// ResultadoVoto classifica o desfecho de uma tentativa de voto.
type ResultadoVoto int

const (
	VotoAceito ResultadoVoto = iota
	VotoJaRegistrado
	VotoOpcaoInvalida
)

func (r ResultadoVoto) String() string {
	switch r {
	case VotoAceito:
		return "accepted"
	case VotoJaRegistrado:
		return "already_voted"
	case VotoOpcaoInvalida:
		return "invalid_option"
	default:
		return "unknown"
	}
}

type ResultadoOpcao struct {
	OpcaoID    OpcaoID
	Texto      string
	Posicao    int
	TotalVotos int64
	Percentual int
}

// ResultadoEnquete é recalculado a cada leitura; nunca é persistido.
type ResultadoEnquete struct {
	EnqueteID  EnqueteID
	Pergunta   string
	TotalVotos int64
	Opcoes     []ResultadoOpcao
}

type TipoEvento string

const (
	EventoEnqueteCriada TipoEvento = "enquete_criada"
	EventoVotoAceito    TipoEvento = "voto_aceito"
	EventoVotoDuplicado TipoEvento = "voto_duplicado"
)

// Evento alimenta a fila operacional consumida pelo worker.
type Evento struct {
	Tipo       TipoEvento `json:"tipo"`
	EnqueteID  EnqueteID  `json:"enquete_id"`
	OpcaoID    OpcaoID    `json:"opcao_id,omitempty"`
	OcorridoEm time.Time  `json:"ocorrido_em"`
}

type Estatisticas struct {
	EnquetesCriadas int64
	VotosAceitos    int64
	VotosDuplicados int64
}

func (Enquete) TableName() string { return "enquetes" }

func (Opcao) TableName() string { return "opcoes" }

func (Voto) TableName() string { return "votos" }
