package sheet

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// skipBOM descarta una marca BOM UTF-8 al inicio del stream
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if peeked, err := br.Peek(3); err == nil && peeked[0] == 0xEF && peeked[1] == 0xBB && peeked[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	return br
}

// ReadCSVFile abre path y lee sus filas con ReadCSV
func ReadCSVFile(path string) ([]RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV lee un CSV codificado en latin-1 con fila de cabecera. Las columnas
// con cabecera vacía se descartan y las filas sin contenido se omiten.
func ReadCSV(r io.Reader) ([]RawRow, error) {
	decoded := transform.NewReader(skipBOM(r), charmap.ISO8859_1.NewDecoder())
	reader := csv.NewReader(decoded)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	// Columnas con cabecera no vacía
	var columns []int
	var labels []string
	for i, h := range header {
		if label := strings.TrimSpace(h); label != "" {
			columns = append(columns, i)
			labels = append(labels, label)
		}
	}

	var rows []RawRow
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)

		row := RawRow{Line: line, Labels: labels, Cells: make([]Cell, len(columns))}
		for j, idx := range columns {
			if idx < len(rec) {
				row.Cells[j] = String(rec[idx])
			}
		}
		if row.IsBlank() {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}
