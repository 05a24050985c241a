package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ayurdiag/internal/samples"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [paths...]",
	Short: "Load, chunk, embed and store knowledge-base documents",
	Long: `Reads pdf, docx and txt files (directories are walked recursively, globs are
expanded), splits them into chunks, embeds them and replaces the stored index.
Without arguments the configured raw document directory is used.`,
	RunE: runIngest,
}

var queryTopK int

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Show the knowledge-base passages most relevant to a text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

var samplesCmd = &cobra.Command{
	Use:   "samples [dir]",
	Short: "Write the sample Vata, Pitta and Kapha documents",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSamples,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of passages (default retrieval.top_k)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		paths = []string{cfg.Documents.RawPath}
	}
	ctx, cancel := signalContext()
	defer cancel()

	return withApp(ctx, func(a *app) error {
		rep, err := a.svc.IngestPaths(ctx, paths)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		fmt.Println(green("Knowledge base indexed"))
		fmt.Printf("  %s %d (%d chars)\n", bold("documents:"), rep.Documents.TotalDocuments, rep.Documents.TotalChars)
		fmt.Printf("  %s %s\n", bold("file types:"), formatCounts(rep.Documents.FileTypes))
		fmt.Printf("  %s %d (avg %.0f, min %d, max %d)\n", bold("chunks:"),
			rep.Chunks.TotalChunks, rep.Chunks.AverageLength, rep.Chunks.MinLength, rep.Chunks.MaxLength)
		fmt.Printf("  %s %s (dim %d)\n", bold("embedder:"), rep.Embedder, rep.Dimension)
		fmt.Printf("  %s %s\n", bold("took:"), rep.Duration.Round(time.Millisecond))
		if rep.Summary != "" {
			fmt.Println()
			fmt.Println(cyan("Summary"))
			fmt.Println(rep.Summary)
		}
		return nil
	})
}

func runQuery(cmd *cobra.Command, args []string) error {
	q := strings.Join(args, " ")
	ctx, cancel := signalContext()
	defer cancel()

	return withApp(ctx, func(a *app) error {
		a.ensureIndex(ctx)
		results, err := a.retriever.Retrieve(ctx, q, queryTopK)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println(yellow("No relevant passages found."))
			return nil
		}
		for i, r := range results {
			fmt.Printf("%s %s %s\n", cyan(fmt.Sprintf("[%d]", i+1)), bold(r.Source), faint(fmt.Sprintf("score %.3f", r.Score)))
			fmt.Println(indent(r.Content, "    "))
			fmt.Println()
		}
		return nil
	})
}

func runSamples(cmd *cobra.Command, args []string) error {
	dir := cfg.Documents.RawPath
	if len(args) == 1 {
		dir = args[0]
	}
	rep, err := samples.Write(dir)
	if err != nil {
		return err
	}
	for _, f := range rep.Files {
		fmt.Println(green("wrote"), f)
	}
	fmt.Printf("%d files, %d characters. Run %s to index them.\n", len(rep.Files), rep.TotalChars, bold("ayurdiag ingest "+dir))
	return nil
}

func formatCounts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, m[k])
	}
	return strings.Join(parts, " ")
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
