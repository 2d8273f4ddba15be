package models

import (
	"fmt"
	"time"
)

// Outcome resultado de procesar un registro
type Outcome string

const (
	OutcomeInserted         Outcome = "inserted"
	OutcomeUpdated          Outcome = "updated"
	OutcomeUnchanged        Outcome = "unchanged"
	OutcomeFailedValidation Outcome = "failed_validation"
	OutcomeFailedWrite      Outcome = "failed_write"
	OutcomeWouldWrite       Outcome = "would_write" // --dry-run
)

// Outcomes lista ordenada de todos los resultados posibles
var Outcomes = []Outcome{
	OutcomeInserted,
	OutcomeUpdated,
	OutcomeUnchanged,
	OutcomeFailedValidation,
	OutcomeFailedWrite,
	OutcomeWouldWrite,
}

// Summary contadores agregados de una ejecución de importación
type Summary struct {
	RunID            string
	RowsRead         int
	Inserted         int
	Updated          int
	Unchanged        int
	FailedValidation int
	FailedWrite      int
	WouldWrite       int
	DryRun           bool
	Duration         time.Duration
}

// Record suma un resultado al resumen
func (s *Summary) Record(o Outcome) {
	switch o {
	case OutcomeInserted:
		s.Inserted++
	case OutcomeUpdated:
		s.Updated++
	case OutcomeUnchanged:
		s.Unchanged++
	case OutcomeFailedValidation:
		s.FailedValidation++
	case OutcomeFailedWrite:
		s.FailedWrite++
	case OutcomeWouldWrite:
		s.WouldWrite++
	}
}

// Count contador asociado a un resultado
func (s Summary) Count(o Outcome) int {
	switch o {
	case OutcomeInserted:
		return s.Inserted
	case OutcomeUpdated:
		return s.Updated
	case OutcomeUnchanged:
		return s.Unchanged
	case OutcomeFailedValidation:
		return s.FailedValidation
	case OutcomeFailedWrite:
		return s.FailedWrite
	case OutcomeWouldWrite:
		return s.WouldWrite
	}
	return 0
}

// Failed total de registros fallidos
func (s Summary) Failed() int {
	return s.FailedValidation + s.FailedWrite
}

// Processed total de registros con resultado
func (s Summary) Processed() int {
	return s.Inserted + s.Updated + s.Unchanged + s.WouldWrite + s.Failed()
}

func (s Summary) String() string {
	if s.DryRun {
		return fmt.Sprintf("Dry run. Valid: %d, Failed: %d (validation: %d)",
			s.WouldWrite, s.Failed(), s.FailedValidation)
	}
	return fmt.Sprintf("Inserted: %d, Updated: %d, Unchanged: %d, Failed: %d (validation: %d, write: %d)",
		s.Inserted, s.Updated, s.Unchanged, s.Failed(), s.FailedValidation, s.FailedWrite)
}
