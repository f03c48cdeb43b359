// Package export writes clause diff rows as CSV, Markdown or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/RussGuo/Legata/internal/domain"
)

// Header is the column row shared by every export format.
var Header = []string{"Clause/Location", "Before", "After", "Change Type", "Risk Note"}

func record(u domain.DiffUnit) []string {
	return []string{u.Clause, u.Before, u.After, string(u.Type), u.Risk}
}

// WriteCSV writes rows with every field quoted.
func WriteCSV(w io.Writer, rows []domain.DiffUnit) error {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(Header, ","))
	for _, r := range rows {
		fields := record(r)
		for i, f := range fields {
			fields[i] = quote(f)
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	if _, err := io.WriteString(w, strings.Join(lines, "\n")+"\n"); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ReadCSV parses rows written by WriteCSV. A CRLF inside a quoted field is
// read back as LF; clause bodies are LF-only, so they round-trip exactly.
func ReadCSV(r io.Reader) ([]domain.DiffUnit, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header", domain.ErrInvalidInput)
	}
	rows := make([]domain.DiffUnit, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, domain.DiffUnit{
			Clause:   rec[0],
			Location: rec[0],
			Before:   rec[1],
			After:    rec[2],
			Type:     domain.ChangeType(rec[3]),
			Risk:     rec[4],
		})
	}
	return rows, nil
}
