package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newAddCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "add [file or glob]...",
		Short: "Add documents",
		Long:  `Extracts text from each file and stores it. Files that cannot be parsed are added with empty text.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := rt.svc.AddFiles(cmd.Context(), args)
			for _, d := range docs {
				cmd.Printf("Added %s (%s, %d chars)\n", d.Name, d.ID, len([]rune(d.Text)))
			}
			if err != nil {
				return fmt.Errorf("failed to add documents: %w", err)
			}
			return nil
		},
	}
}

func newListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List added documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			docs, err := rt.svc.Documents(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list documents: %w", err)
			}
			if len(docs) == 0 {
				cmd.Println("No documents added.")
				return nil
			}
			for _, d := range docs {
				cmd.Printf("  %s\n", d.ID)
				cmd.Printf("    Name: %s\n", d.Name)
				cmd.Printf("    Type: %s\n", d.Type)
				cmd.Printf("    Added: %s\n", d.AddedAt.Format("2006-01-02 15:04"))
				cmd.Println()
			}
			cmd.Printf("Total: %d documents\n", len(docs))
			return nil
		},
	}
}

func newShowCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show [doc-id]",
		Short: "Show a document preview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := rt.svc.Document(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p := rt.svc.Preview(doc)
			cmd.Printf("%s (%s)\n", doc.Name, doc.Type)
			if len(p.Outline) > 0 {
				cmd.Println("\nOutline:")
				for _, o := range p.Outline {
					cmd.Printf("  %s\n", o)
				}
			}
			if len(p.Snippets) > 0 {
				cmd.Println("\nOpening:")
				for _, s := range p.Snippets {
					cmd.Printf("  %s\n", s)
				}
			}
			if p.Summary != "" {
				cmd.Printf("\nSummary:\n  %s\n", p.Summary)
			}
			return nil
		},
	}
}

func newResetCmd(rt *runtime) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove all documents and chunks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("reset deletes every stored document; pass --yes to confirm")
			}
			if err := rt.svc.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("failed to reset: %w", err)
			}
			cmd.Println("All documents removed.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion")
	return cmd
}
