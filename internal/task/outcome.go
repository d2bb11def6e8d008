package task

import "fmt"

type Kind int

const (
	Failed Kind = iota
	Saved
	Empty
)

func (k Kind) String() string {
	switch k {
	case Saved:
		return "saved"
	case Empty:
		return "empty"
	default:
		return "failed"
	}
}

// Outcome is the result of one expression. Err is set only for Failed.
type Outcome struct {
	Label string
	Kind  Kind
	Name  string
	Err   error
}

func (o Outcome) String() string {
	switch o.Kind {
	case Saved:
		return o.Label + ": saved"
	case Empty:
		return o.Label + ": api returned no image"
	default:
		return fmt.Sprintf("%s: %v", o.Label, o.Err)
	}
}
