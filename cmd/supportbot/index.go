package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"supportbot/internal/knowledge"
	"supportbot/internal/summarizer"
	"supportbot/internal/vectorstore"
	"supportbot/internal/watch"
)

func NewIndexCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the knowledge base index from the FAQ and documentation",
		Long: `Build the knowledge base index. By default an existing index is kept and only
loaded; --rebuild re-reads every source. --watch keeps running and rebuilds
whenever a source file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rebuild, _ := cmd.Flags().GetBool("rebuild")
			watchSources, _ := cmd.Flags().GetBool("watch")
			summary, _ := cmd.Flags().GetInt("summary")
			tree, _ := cmd.Flags().GetBool("tree")

			store, err := a.knowledgeBase(ctx)
			if err != nil {
				return err
			}
			if err := ensureIndex(cmd, store, a.sources(), rebuild); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Indexed %d documents into %s\n", store.Len(), a.cfg.Knowledge.IndexPath)
			if tree {
				fmt.Fprint(out, knowledge.Outline(store.Documents()))
			}
			if summary > 0 {
				overview := summarizer.NewFrequencySummarizer().SummarizeDocuments(store.Documents(), summary)
				if overview != "" {
					fmt.Fprintf(out, "\nOverview:\n%s\n", overview)
				}
			}
			if !watchSources {
				return nil
			}

			fmt.Fprintln(out, "Watching sources for changes (ctrl+c to stop)")
			w := watch.New(store, a.sources(), watch.OnRebuild(func(err error) {
				if err == nil {
					fmt.Fprintf(out, "Rebuilt index: %d documents\n", store.Len())
				}
			}))
			return w.Run(ctx)
		},
	}
	cmd.Flags().Bool("rebuild", false, "Rebuild even if a usable index exists")
	cmd.Flags().Bool("watch", false, "Rebuild whenever a source file changes")
	cmd.Flags().Bool("tree", false, "Print an outline of the indexed documents")
	cmd.Flags().Int("summary", 0, "Print an N-sentence overview of the documentation")
	return cmd
}

func ensureIndex(cmd *cobra.Command, store *vectorstore.Store, sources []string, rebuild bool) error {
	ctx := cmd.Context()
	if !rebuild {
		err := store.LoadIndex(ctx)
		if err == nil {
			return nil
		}
		slog.Info("building index", "reason", err)
	}
	return store.Rebuild(ctx, sources...)
}
