package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"invadmin/internal/sheet"
)

// dateLayouts formatos probados en orden: %Y-%m-%d, %d-%m-%Y, %m/%d/%Y,
// %d/%m/%Y, %Y/%m/%d. Día y mes aceptan uno o dos dígitos.
var dateLayouts = []string{
	"2006-1-2",
	"2-1-2006",
	"1/2/2006",
	"2/1/2006",
	"2006/1/2",
}

// isoLayouts alternativa ISO-8601 cuando ningún formato fijo coincide
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"20060102",
}

// String recorta la celda; vacío significa ausente (nil)
func String(c sheet.Cell) *string {
	s := strings.TrimSpace(c.Text())
	if s == "" {
		return nil
	}
	return &s
}

// Number acepta números finitos o texto numérico; lo demás es ausente
func Number(c sheet.Cell) *float64 {
	var f float64
	switch c.Kind {
	case sheet.CellNumber:
		f = c.Num
	case sheet.CellString:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(c.Str), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Int trunca hacia cero un valor numérico; fuera de rango int64 es ausente
func Int(c sheet.Cell) *int {
	f := Number(c)
	if f == nil || *f >= math.MaxInt64 || *f <= math.MinInt64 {
		return nil
	}
	i := int(*f)
	return &i
}

// Date acepta celdas de fecha tal cual; el texto se prueba contra los
// formatos fijos y luego ISO-8601. Los valores sin zona se interpretan en UTC.
func Date(c sheet.Cell) *time.Time {
	switch c.Kind {
	case sheet.CellDate:
		t := c.Time
		return &t
	case sheet.CellString:
		return ParseDate(c.Str)
	default:
		return nil
	}
}

// ParseDate parsea un texto de fecha; nil si ningún formato coincide
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t
		}
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}
