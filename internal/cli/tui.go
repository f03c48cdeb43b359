package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/RussGuo/Legata/internal/tui"
)

func newTUICmd(rt *runtime) *cobra.Command {
	var docs []string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Ask questions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ids, err := rt.scope(ctx, docs)
			if err != nil {
				return err
			}
			names, err := rt.svc.DocumentNames(ctx)
			if err != nil {
				return err
			}
			summary := fmt.Sprintf("%d document(s) in scope", len(ids))
			if len(ids) == 1 {
				summary = names[ids[0]]
			}
			m := tui.New(ctx, rt.svc, ids, names, summary)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
	cmd.Flags().StringSliceVarP(&docs, "doc", "d", nil, "Document id to search (repeatable; default all)")
	return cmd
}
