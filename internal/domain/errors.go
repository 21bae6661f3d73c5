package domain

import "errors"

var (
	ErrNotFound = errors.New("registro nao encontrado")
	// ErrVotoDuplicado sinaliza violação do índice único (enquete, eleitor) reportada pelo banco.
	ErrVotoDuplicado = errors.New("eleitor ja votou nesta enquete")
	ErrOpcaoInvalida = errors.New("opcao nao pertence a enquete")
)
