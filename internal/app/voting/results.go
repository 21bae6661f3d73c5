package voting

import (
	"github.com/marcelojr/enquete-rapida/internal/domain"
)

// CalcularResultado monta o resultado a partir da contagem bruta por opção.
// Opções sem voto entram com zero e a ordem de saída é a ordem recebida.
func CalcularResultado(enquete domain.Enquete, opcoes []domain.Opcao, contagem map[domain.OpcaoID]int64) domain.ResultadoEnquete {
	var total int64
	for _, opcao := range opcoes {
		total += contagem[opcao.ID]
	}

	resultado := domain.ResultadoEnquete{
		EnqueteID:  enquete.ID,
		Pergunta:   enquete.Pergunta,
		TotalVotos: total,
		Opcoes:     make([]domain.ResultadoOpcao, len(opcoes)),
	}

	for i, opcao := range opcoes {
		votos := contagem[opcao.ID]
		resultado.Opcoes[i] = domain.ResultadoOpcao{
			OpcaoID:    opcao.ID,
			Texto:      opcao.Texto,
			Posicao:    opcao.Posicao,
			TotalVotos: votos,
			Percentual: Percentual(votos, total),
		}
	}

	return resultado
}

// Percentual arredonda meio para cima em aritmética inteira: 1/8 vira 13, 1/3 vira 33.
func Percentual(votos, total int64) int {
	if total <= 0 {
		return 0
	}
	return int((200*votos + total) / (2 * total))
}
