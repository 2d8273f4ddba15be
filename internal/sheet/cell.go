package sheet

import (
	"strconv"
	"strings"
	"time"
)

// CellKind tipo de valor contenido en una celda
type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
	CellDate
)

func (k CellKind) String() string {
	switch k {
	case CellString:
		return "string"
	case CellNumber:
		return "number"
	case CellDate:
		return "date"
	default:
		return "empty"
	}
}

// Cell valor de celda decodificado en el límite del lector. Solo el campo
// correspondiente a Kind es significativo.
type Cell struct {
	Kind CellKind
	Str  string
	Num  float64
	Time time.Time
}

// Empty celda vacía
func Empty() Cell { return Cell{} }

// String construye una celda de texto; "" produce una celda vacía
func String(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: CellString, Str: s}
}

// Number construye una celda numérica
func Number(f float64) Cell { return Cell{Kind: CellNumber, Num: f} }

// Date construye una celda de fecha
func Date(t time.Time) Cell { return Cell{Kind: CellDate, Time: t} }

// IsBlank indica si la celda no tiene contenido visible
func (c Cell) IsBlank() bool {
	switch c.Kind {
	case CellEmpty:
		return true
	case CellString:
		return strings.TrimSpace(c.Str) == ""
	default:
		return false
	}
}

// Text representación textual de la celda
func (c Cell) Text() string {
	switch c.Kind {
	case CellString:
		return c.Str
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case CellDate:
		return c.Time.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}
