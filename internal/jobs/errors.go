package jobs

import "errors"

// Errores de lote: abortan la ejecución antes o durante el procesamiento
var (
	ErrInputNotFound = errors.New("input file not found")
	ErrUnreadable    = errors.New("input file could not be read")
)
