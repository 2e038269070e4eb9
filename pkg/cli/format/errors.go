package format

import (
	"fmt"
	"io"
)

// Hinted is an error carrying a remedy for the user.
type Hinted struct {
	Err  error
	Hint string
}

func (h *Hinted) Error() string { return h.Err.Error() }

func (h *Hinted) Unwrap() error { return h.Err }

// WithHint attaches a hint to err.
func WithHint(err error, hint string) error {
	if err == nil {
		return nil
	}
	return &Hinted{Err: err, Hint: hint}
}

// PrintError writes err, and its hint when it has one, to w.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %s\n", Error("Error:"), err)
	if h, ok := err.(*Hinted); ok && h.Hint != "" {
		fmt.Fprintf(w, "%s %s\n", Warning("Hint:"), h.Hint)
	}
}
