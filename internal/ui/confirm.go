package ui

import (
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(title string, defaultYes bool) (bool, error)
}

// FormConfirmer asks through a huh form. The prompt is drawn on Output so
// that stdout stays reserved for command results.
type FormConfirmer struct {
	Input  io.Reader
	Output io.Writer
}

// NewFormConfirmer returns a confirmer reading stdin and drawing on stderr.
func NewFormConfirmer() *FormConfirmer {
	return &FormConfirmer{Input: os.Stdin, Output: os.Stderr}
}

// Confirm implements Confirmer. An aborted prompt (Ctrl+C) counts as no.
func (c *FormConfirmer) Confirm(title string, defaultYes bool) (bool, error) {
	answer := defaultYes
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&answer),
		),
	).WithProgramOptions(tea.WithInput(c.Input), tea.WithOutput(c.Output))

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	return answer, nil
}

// Answer is a fixed Confirmer for batch runs and tests.
type Answer bool

// Confirm implements Confirmer.
func (a Answer) Confirm(string, bool) (bool, error) {
	return bool(a), nil
}
