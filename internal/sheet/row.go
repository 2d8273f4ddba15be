package sheet

import "strings"

// RawRow fila leída de la fuente: pares (etiqueta, celda) en el orden de las columnas
type RawRow struct {
	Line   int
	Labels []string
	Cells  []Cell
}

// Get retorna la celda de la primera columna cuya etiqueta normalizada está
// entre los alias dados. ok es false si ninguna columna coincide.
func (r RawRow) Get(aliases []string) (Cell, bool) {
	for i, label := range r.Labels {
		norm := NormalizeLabel(label)
		for _, alias := range aliases {
			if norm == NormalizeLabel(alias) {
				if i < len(r.Cells) {
					return r.Cells[i], true
				}
				return Empty(), true
			}
		}
	}
	return Empty(), false
}

// IsBlank indica si todas las celdas de la fila están vacías
func (r RawRow) IsBlank() bool {
	for _, c := range r.Cells {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}

// NormalizeLabel normaliza una etiqueta de cabecera para compararla
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
