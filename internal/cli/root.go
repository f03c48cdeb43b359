// Package cli implements the legata command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/RussGuo/Legata/internal/config"
	"github.com/RussGuo/Legata/internal/domain"
	"github.com/RussGuo/Legata/internal/embedding"
	"github.com/RussGuo/Legata/internal/logger"
	"github.com/RussGuo/Legata/internal/service"
)

// runtime holds what the persistent flags resolve to for one invocation.
type runtime struct {
	cfgPath string
	verbose bool

	cfg      *config.AppConfig
	cfgFrom  string
	svc      *service.Service
	shutdown func() error
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	root, rt := newRootCmd()
	defer rt.close()
	return root.ExecuteContext(ctx)
}

func newRootCmd() (*cobra.Command, *runtime) {
	rt := &runtime{}
	root := &cobra.Command{
		Use:   "legata",
		Short: "Ask questions about documents and compare contract versions",
		Long: `Legata extracts text from PDF, DOCX, HTML, Markdown and plain text files,
answers questions with cited sentences, and compares clause by clause.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: rt.setup,
	}
	root.PersistentFlags().StringVar(&rt.cfgPath, "config", "", "Path to YAML config file (default ./legata.yaml or ~/.config/legata/config.yaml)")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Print diagnostic output")

	root.AddCommand(
		newAddCmd(rt),
		newListCmd(rt),
		newShowCmd(rt),
		newIndexCmd(rt),
		newAskCmd(rt),
		newCompareCmd(rt),
		newTUICmd(rt),
		newResetCmd(rt),
	)
	return root, rt
}

func (rt *runtime) setup(cmd *cobra.Command, _ []string) error {
	var err error
	if rt.cfgPath == "" {
		rt.cfg, rt.cfgFrom, err = config.LoadDefault()
	} else {
		rt.cfg, err = config.Load(rt.cfgPath)
		rt.cfgFrom = rt.cfgPath
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.SetVerbose(rt.verbose || rt.cfg.Log.Verbose)
	logger.Debug("config loaded from %s", rt.cfgFrom)

	rt.svc, rt.shutdown, err = build(cmd.Context(), rt.cfg)
	return err
}

func (rt *runtime) close() {
	if rt.shutdown == nil {
		return
	}
	if err := rt.shutdown(); err != nil {
		logger.Warn("shutdown: %v", err)
	}
	rt.shutdown = nil
}

// scope returns ids, or every stored document id when ids is empty.
func (rt *runtime) scope(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) > 0 {
		return ids, nil
	}
	docs, err := rt.svc.Documents(ctx)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no documents added yet, run 'legata add' first", domain.ErrInvalidInput)
	}
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out, nil
}

// explain adds a configuration hint to embedding failures.
func (rt *runtime) explain(err error) error {
	if errors.Is(err, domain.ErrEmbeddingUnavailable) {
		return fmt.Errorf("%w (check the embedder section of %s)", err, rt.cfgFrom)
	}
	return err
}

// progressBar writes a single updating percentage line to w.
func progressBar(w io.Writer, label string) embedding.Progress {
	last := -1
	return func(f float64) {
		pct := int(f * 100)
		if pct == last {
			return
		}
		last = pct
		fmt.Fprintf(w, "\r%s %3d%%", label, pct)
		if pct >= 100 {
			fmt.Fprintln(w)
		}
	}
}
