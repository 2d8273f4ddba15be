// Package cli utilidades compartidas por los binarios de cmd/
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"invadmin/internal/config"
	"invadmin/internal/jobs"
)

// ErrSetup la configuración o los schemas embebidos no se pudieron cargar
var ErrSetup = errors.New("setup failed")

// Setup carga .env.local/.env del directorio actual y la configuración, y
// crea el Runner que escribe en out
func Setup(out io.Writer) (*jobs.Runner, error) {
	config.LoadEnvFiles(".")

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSetup, err)
	}
	cfg.LogConfigSummary(out)

	runner, err := jobs.NewRunner(cfg, out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSetup, err)
	}
	return runner, nil
}

// InputPath primer argumento posicional o, si no hay, name junto al ejecutable
func InputPath(args []string, name string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return besideExecutable(name)
}

func besideExecutable(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	exe, err := os.Executable()
	if err != nil {
		return name
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), name)
}

// jobError error retornado por el RunE de un comando, a diferencia de los
// errores de uso que cobra detecta antes de ejecutarlo
type jobError struct {
	err error
}

func (e *jobError) Error() string { return e.err.Error() }
func (e *jobError) Unwrap() error { return e.err }

func tagJobErrors(cmd *cobra.Command) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(c *cobra.Command, args []string) error {
			if err := run(c, args); err != nil {
				return &jobError{err: err}
			}
			return nil
		}
	}
	for _, sub := range cmd.Commands() {
		tagJobErrors(sub)
	}
}

// ExitCode código de salida para el error de un comando. Solo la falta de
// configuración, del archivo de entrada o el uso incorrecto terminan con 1;
// los fallos de conexión y de lote terminan con 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var je *jobError
	if !errors.As(err, &je) {
		return 1
	}
	switch {
	case errors.Is(err, ErrSetup),
		errors.Is(err, config.ErrMissingURI),
		errors.Is(err, config.ErrMissingDatabase),
		errors.Is(err, jobs.ErrInputNotFound),
		errors.Is(err, jobs.ErrUnreadable):
		return 1
	}
	return 0
}

// Run ejecuta el comando raíz, informa el error por la salida estándar y
// retorna el código de salida
func Run(cmd *cobra.Command) int {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	tagJobErrors(cmd)

	err := cmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "❌ %v\n", err)
	}
	return ExitCode(err)
}

// Execute ejecuta el comando raíz y termina el proceso con su código
func Execute(cmd *cobra.Command) {
	os.Exit(Run(cmd))
}
