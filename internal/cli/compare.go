package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/RussGuo/Legata/internal/diff"
	"github.com/RussGuo/Legata/internal/domain"
	"github.com/RussGuo/Legata/internal/export"
)

var (
	clauseStyle = lipgloss.NewStyle().Bold(true)
	riskStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func newCompareCmd(rt *runtime) *cobra.Command {
	var granularity, format, out string
	cmd := &cobra.Command{
		Use:   "compare [file-a] [file-b]",
		Short: "Compare two document versions clause by clause",
		Long: `Splits both files into titled clauses, pairs them by normalised title and
reports added, deleted and modified clauses with inline [-removed-]{+added+} markup.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if granularity == "" {
				granularity = rt.cfg.Diff.Granularity
			}
			g, err := diff.ParseGranularity(granularity)
			if err != nil {
				return err
			}
			write, err := writerFor(format)
			if err != nil {
				return err
			}
			if format == "xlsx" && out == "" {
				return fmt.Errorf("%w: xlsx output needs --out", domain.ErrInvalidInput)
			}

			units, err := rt.svc.CompareFiles(cmd.Context(), args[0], args[1], g)
			if err != nil {
				return fmt.Errorf("failed to compare: %w", err)
			}

			if out == "" {
				return write(cmd.OutOrStdout(), units)
			}
			if err := writeFile(out, units, write); err != nil {
				return err
			}
			cmd.Printf("Wrote %d changes to %s\n", len(units), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&granularity, "granularity", "g", "", "Diff granularity: sentence or token (default from config)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, csv, md or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to file instead of stdout")
	return cmd
}

func writerFor(format string) (func(io.Writer, []domain.DiffUnit) error, error) {
	switch format {
	case "table", "":
		return writeTable, nil
	case "csv":
		return export.WriteCSV, nil
	case "md", "markdown":
		return export.WriteMarkdown, nil
	case "xlsx":
		return export.WriteXLSX, nil
	default:
		return nil, fmt.Errorf("%w: format %q", domain.ErrInvalidInput, format)
	}
}

// writeFile exports units to path. A failed export leaves no file behind.
func writeFile(path string, units []domain.DiffUnit, write func(io.Writer, []domain.DiffUnit) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = write(f, units)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeTable(w io.Writer, units []domain.DiffUnit) error {
	if len(units) == 0 {
		_, err := fmt.Fprintln(w, "No differences.")
		return err
	}
	var errs []error
	for _, u := range units {
		_, err := fmt.Fprintf(w, "%s (%s)\n", clauseStyle.Render(u.Clause), u.Type)
		errs = append(errs, err)
		if u.Before != "" {
			_, err = fmt.Fprintf(w, "  before: %s\n", u.Before)
			errs = append(errs, err)
		}
		if u.After != "" {
			_, err = fmt.Fprintf(w, "  after:  %s\n", u.After)
			errs = append(errs, err)
		}
		if u.Risk != "" {
			_, err = fmt.Fprintf(w, "  risk:   %s\n", riskStyle.Render(u.Risk))
			errs = append(errs, err)
		}
		_, err = fmt.Fprintln(w)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
