package clock

import "time"

type SystemClock struct{}

func NewSystemClock() SystemClock {
	return SystemClock{}
}

func (SystemClock) Agora() time.Time {
	return time.Now().UTC()
}

// Fixo devolve sempre o mesmo instante; usado em testes e em reprocessamentos determinísticos.
type Fixo struct {
	Instante time.Time
}

func NewFixo(t time.Time) *Fixo {
	return &Fixo{Instante: t.UTC()}
}

func (f *Fixo) Agora() time.Time {
	return f.Instante
}

// Avancar move o relógio para frente, útil para ordenar registros em testes.
func (f *Fixo) Avancar(d time.Duration) {
	f.Instante = f.Instante.Add(d)
}
