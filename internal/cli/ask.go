package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RussGuo/Legata/internal/answer"
	"github.com/RussGuo/Legata/internal/domain"
)

func newIndexCmd(rt *runtime) *cobra.Command {
	var docs []string
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Chunk and embed documents",
		Long:  `Chunks the selected documents (all by default) and embeds every chunk that has no stored vector.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ids, err := rt.scope(cmd.Context(), docs)
			if err != nil {
				return err
			}
			chunks, err := rt.svc.Index(cmd.Context(), ids, progressBar(cmd.ErrOrStderr(), "Indexing"))
			if err != nil {
				return rt.explain(err)
			}
			cmd.Printf("Indexed %d chunks across %d documents\n", len(chunks), len(ids))
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&docs, "doc", "d", nil, "Document id to include (repeatable; default all)")
	return cmd
}

func newAskCmd(rt *runtime) *cobra.Command {
	var (
		docs     []string
		markdown bool
	)
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a question with cited sentences",
		Long: `Ranks document chunks by similarity to the question and returns the
best supporting sentences, each citing the passage it came from.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ids, err := rt.scope(ctx, docs)
			if err != nil {
				return err
			}
			ans, err := rt.svc.Ask(ctx, strings.Join(args, " "), ids, progressBar(cmd.ErrOrStderr(), "Indexing"))
			if err != nil {
				return rt.explain(err)
			}
			names, err := rt.svc.DocumentNames(ctx)
			if err != nil {
				return err
			}
			nameFor := func(id string) string {
				if n, ok := names[id]; ok {
					return n
				}
				return id
			}
			if markdown {
				cmd.Print(answer.Markdown(ans, nameFor))
				return nil
			}
			printAnswer(cmd, ans, nameFor)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&docs, "doc", "d", nil, "Document id to search (repeatable; default all)")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Print the answer as Markdown with footnotes")
	return cmd
}

func printAnswer(cmd *cobra.Command, ans domain.Answer, nameFor func(string) string) {
	if answer.IsNoMatch(ans.Sentences) {
		cmd.Println(answer.NoMatch)
		return
	}
	for i, s := range ans.Sentences {
		cmd.Printf("%d. %s\n", i+1, s.Text)
		for _, c := range s.Citations {
			cmd.Printf("   %s\n", cite(c, nameFor))
		}
	}
}

func cite(c domain.Citation, nameFor func(string) string) string {
	return fmt.Sprintf("%s [%d:%d]", nameFor(c.DocumentID), c.Start, c.End)
}
