package services

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Confirmer pide confirmación explícita antes de una operación destructiva
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmFunc adapta una función al interface Confirmer
type ConfirmFunc func(prompt string) (bool, error)

// Confirm implementa Confirmer
func (f ConfirmFunc) Confirm(prompt string) (bool, error) { return f(prompt) }

// AlwaysConfirm confirma sin preguntar (modo no interactivo)
var AlwaysConfirm = ConfirmFunc(func(string) (bool, error) { return true, nil })

// LineConfirmer lee una línea de in tras escribir el prompt en out
type LineConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLineConfirmer crea un confirmador sobre stdin/stdout u otros streams
func NewLineConfirmer(in io.Reader, out io.Writer) *LineConfirmer {
	return &LineConfirmer{in: bufio.NewReader(in), out: out}
}

// Confirm acepta solo "yes" exacto sin distinguir mayúsculas. Solo se quita
// el terminador de línea: " yes" o "yes " no confirman. EOF cancela.
func (c *LineConfirmer) Confirm(prompt string) (bool, error) {
	fmt.Fprint(c.out, prompt)

	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("error reading confirmation: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		return false, nil
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return strings.EqualFold(line, "yes"), nil
}
