package voting

import (
	"fmt"

	"github.com/marcelojr/enquete-rapida/internal/domain"
)

func CounterKeyEvento(tipo domain.TipoEvento) string {
	return fmt.Sprintf("eventos:%s", tipo)
}

func CounterKeyVotosEnquete(id domain.EnqueteID) string {
	return fmt.Sprintf("enquete:%s:votos_aceitos", id)
}
