package sheet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheets el libro no contiene hojas
var ErrNoSheets = errors.New("no sheets found in the workbook")

// DefaultHeaderScanRows filas inspeccionadas al buscar la cabecera
const DefaultHeaderScanRows = 10

// Workbook resultado de leer la primera hoja de un libro
type Workbook struct {
	Sheet string
	// HeaderRow índice (0-based) de la fila de cabecera; -1 en modo de una columna
	HeaderRow int
	Labels    []string
	Rows      []RawRow
}

// Fallback indica si no se encontró cabecera y se usó el modo de una columna
func (w *Workbook) Fallback() bool {
	return w.HeaderRow < 0
}

// ReadWorkbook lee la primera hoja de un libro .xlsx (solo valores cacheados,
// sin fórmulas). Busca la cabecera en las primeras scanRows filas; si ninguna
// contiene una grafía conocida, la primera celda de cada fila se toma como name.
func ReadWorkbook(path string, aliases AliasTable, scanRows int) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	name := sheets[0]

	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}

	dec := &cellDecoder{file: f, sheet: name, dateStyles: make(map[int]bool)}
	grid := make([][]Cell, len(raw))
	for r, cols := range raw {
		grid[r] = make([]Cell, len(cols))
		for c, v := range cols {
			grid[r][c] = dec.decode(c, r, v)
		}
	}

	wb := &Workbook{Sheet: name, HeaderRow: findHeader(grid, aliases, scanRows)}
	if wb.Fallback() {
		wb.Rows = singleColumnRows(grid)
		return wb, nil
	}

	for _, c := range grid[wb.HeaderRow] {
		wb.Labels = append(wb.Labels, strings.TrimSpace(c.Text()))
	}
	for r := wb.HeaderRow + 1; r < len(grid); r++ {
		row := RawRow{Line: r + 1, Labels: wb.Labels, Cells: grid[r]}
		if row.IsBlank() {
			continue
		}
		wb.Rows = append(wb.Rows, row)
	}

	return wb, nil
}

// findHeader índice de la primera fila con alguna grafía conocida, o -1
func findHeader(grid [][]Cell, aliases AliasTable, scanRows int) int {
	if scanRows <= 0 {
		scanRows = DefaultHeaderScanRows
	}
	tokens := aliases.Tokens()
	for r := 0; r < len(grid) && r < scanRows; r++ {
		for _, c := range grid[r] {
			if _, ok := tokens[NormalizeLabel(c.Text())]; ok {
				return r
			}
		}
	}
	return -1
}

// singleColumnRows modo degradado: la primera celda de cada fila es el name
func singleColumnRows(grid [][]Cell) []RawRow {
	var rows []RawRow
	for r, cells := range grid {
		if len(cells) == 0 || cells[0].IsBlank() {
			continue
		}
		rows = append(rows, RawRow{
			Line:   r + 1,
			Labels: []string{"name"},
			Cells:  []Cell{String(strings.TrimSpace(cells[0].Text()))},
		})
	}
	return rows
}

type cellDecoder struct {
	file       *excelize.File
	sheet      string
	dateStyles map[int]bool
}

// decode convierte el valor crudo de una celda en una Cell tipada
func (d *cellDecoder) decode(col, row int, value string) Cell {
	if value == "" {
		return Empty()
	}
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return String(value)
	}
	typ, err := d.file.GetCellType(d.sheet, axis)
	if err != nil {
		return String(value)
	}

	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return String(value)
	case excelize.CellTypeBool:
		if value == "1" || strings.EqualFold(value, "true") {
			return String("TRUE")
		}
		return String("FALSE")
	case excelize.CellTypeError:
		return Empty()
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
			return Date(t.UTC())
		}
		return String(value)
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return String(value)
	}
	if d.isDateStyled(axis) {
		if t, err := excelize.ExcelDateToTime(f, false); err == nil {
			return Date(t)
		}
	}
	return Number(f)
}

func (d *cellDecoder) isDateStyled(axis string) bool {
	styleID, err := d.file.GetCellStyle(d.sheet, axis)
	if err != nil || styleID == 0 {
		return false
	}
	if cached, ok := d.dateStyles[styleID]; ok {
		return cached
	}
	style, err := d.file.GetStyle(styleID)
	isDate := err == nil && style != nil && IsDateFormat(style.NumFmt, style.CustomNumFmt)
	d.dateStyles[styleID] = isDate
	return isDate
}

// IsDateFormat indica si un formato numérico de Excel representa una fecha.
// Los formatos de solo hora no cuentan como fecha.
func IsDateFormat(numFmt int, custom *string) bool {
	if custom != nil && *custom != "" {
		return isDatePattern(*custom)
	}
	switch {
	case numFmt >= 14 && numFmt <= 17, numFmt == 22:
		return true
	case numFmt >= 27 && numFmt <= 36, numFmt >= 50 && numFmt <= 58:
		return true
	}
	return false
}

func isDatePattern(pattern string) bool {
	lower := strings.ToLower(pattern)
	// Duraciones transcurridas: [h]:mm, [mm]:ss
	if strings.Contains(lower, "[h") || strings.Contains(lower, "[m") || strings.Contains(lower, "[s") {
		return false
	}
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range lower {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	p := b.String()
	if strings.ContainsAny(p, "yd") {
		return true
	}
	return strings.Contains(p, "m") && !strings.ContainsAny(p, "hs")
}
