package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/RussGuo/Legata/internal/domain"
)

var cellReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "|", `\|`)

// WriteMarkdown writes rows as a pipe table.
func WriteMarkdown(w io.Writer, rows []domain.DiffUnit) error {
	var b strings.Builder
	b.WriteString("| " + strings.Join(Header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(Header)) + "\n")
	for _, r := range rows {
		cells := record(r)
		for i, c := range cells {
			cells[i] = cellReplacer.Replace(c)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing markdown: %w", err)
	}
	return nil
}
