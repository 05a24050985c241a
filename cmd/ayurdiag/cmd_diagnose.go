package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ayurdiag/internal/diagnosis"
	"ayurdiag/internal/display"
	"ayurdiag/internal/samples"
)

var (
	noRAG       bool
	temperature float64
	htmlOut     string
	jsonOut     bool
	batchOut    string
	runCases    bool
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <symptoms>",
	Short: "Analyze a symptom description",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDiagnose,
}

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze one symptom description per line of a file",
	Long: `Reads symptom descriptions from a file, one per line (blank lines and lines
starting with # are skipped; "-" reads stdin), analyzes them concurrently and
saves the results as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show model, retriever and index information",
	RunE:  runInfo,
}

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Check the model connection, prompts and reference cases",
	RunE:  runSelfTest,
}

func init() {
	for _, c := range []*cobra.Command{diagnoseCmd, batchCmd} {
		c.Flags().BoolVar(&noRAG, "no-rag", false, "skip knowledge-base retrieval")
		c.Flags().Float64VarP(&temperature, "temperature", "t", 0, "sampling temperature (default llm.temperature)")
		c.Flags().StringVar(&htmlOut, "html", "", "also write an HTML report to this file")
	}
	diagnoseCmd.Flags().BoolVar(&jsonOut, "json", false, "print the diagnosis as JSON")
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "results.json", "results file")
	selftestCmd.Flags().BoolVar(&runCases, "cases", true, "also run the reference dosha cases")
}

func options() diagnosis.Options {
	return diagnosis.Options{UseRAG: !noRAG, Temperature: temperature}
}

func withEngine(fn func(context.Context, *app, *diagnosis.Engine) error) error {
	ctx, cancel := signalContext()
	defer cancel()
	return withApp(ctx, func(a *app) error {
		eng, err := a.newEngine(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, a, eng)
	})
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	symptoms := strings.Join(args, " ")
	return withEngine(func(ctx context.Context, _ *app, eng *diagnosis.Engine) error {
		d, err := eng.Analyze(ctx, symptoms, options())
		if htmlOut != "" {
			body, rerr := display.Result(diagnosis.NewResult(symptoms, d, err))
			if rerr != nil {
				return rerr
			}
			if werr := writePage(htmlOut, "Ayurvedic Diagnosis", body); werr != nil {
				return werr
			}
			logger.Info("wrote HTML report", zap.String("path", htmlOut))
		}
		if err != nil {
			printError(os.Stderr, err)
			return err
		}
		if jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(d)
		}
		printDiagnosis(os.Stdout, d)
		return nil
	})
}

func runBatch(cmd *cobra.Command, args []string) error {
	list, err := readSymptoms(args[0])
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return fmt.Errorf("no symptom descriptions in %s", args[0])
	}
	return withEngine(func(ctx context.Context, _ *app, eng *diagnosis.Engine) error {
		fmt.Printf("Analyzing %d symptom descriptions...\n", len(list))
		results := eng.AnalyzeBatch(ctx, list, options())

		failed := 0
		for i, r := range results {
			if !r.OK() {
				failed++
				fmt.Printf("%s %s\n    %s\n", red(fmt.Sprintf("[%d]", i+1)), r.Symptoms, r.Error)
				continue
			}
			fmt.Printf("%s %s → %s\n", green(fmt.Sprintf("[%d]", i+1)), r.Symptoms, doshaLabel(r.Diagnosis.DominantDosha))
		}
		if err := diagnosis.SaveResults(batchOut, results); err != nil {
			return err
		}
		fmt.Printf("\n%d ok, %d failed. Results saved to %s\n", len(results)-failed, failed, bold(batchOut))

		if htmlOut != "" {
			body, err := display.Batch(results)
			if err != nil {
				return err
			}
			if err := writePage(htmlOut, "Batch Diagnosis", body); err != nil {
				return err
			}
			fmt.Println("HTML report:", bold(htmlOut))
		}
		return nil
	})
}

func runInfo(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, a *app, eng *diagnosis.Engine) error {
		info := eng.SystemInfo(ctx)
		row := func(k string, v any) { fmt.Printf("  %-22s %v\n", k, v) }

		fmt.Println(cyan("Model"))
		row("provider", info.Model.Provider)
		row("model", info.Model.Model)
		row("temperature", info.Settings.Temperature)
		row("max tokens", info.Settings.MaxTokens)
		fmt.Println(cyan("Knowledge base"))
		row("retriever ready", info.RetrieverReady)
		row("indexed chunks", info.IndexedChunks)
		row("top k", info.Settings.TopK)
		row("embedder", a.svc.EmbedderName())
		row("vector store", a.cfg.VectorStore.Type)
		if s := a.svc.Summary(); s != "" {
			fmt.Println(cyan("Summary"))
			fmt.Println(indent(s, "  "))
		}
		return nil
	})
}

func runSelfTest(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, _ *app, eng *diagnosis.Engine) error {
		rep := eng.SelfTest(ctx)
		check := func(name string, ok bool, detail string) {
			mark := green("PASS")
			if !ok {
				mark = red("FAIL")
			}
			fmt.Printf("  %s %s", mark, name)
			if detail != "" {
				fmt.Printf(" %s", faint(detail))
			}
			fmt.Println()
		}

		fmt.Println(cyan("System checks"))
		check("model connection", rep.Connection, rep.ConnectionError)
		if rep.RetrieverReady {
			check("retriever", true, "")
		} else {
			fmt.Printf("  %s retriever %s\n", yellow("WARN"), faint("knowledge base not indexed"))
		}
		check("prompt template", rep.PromptValid, strings.Join(rep.PromptMissing, ", "))
		if rep.SampleRun {
			check("sample diagnosis", rep.SampleDiagnosis, rep.SampleError)
		}
		passed := rep.Passed()

		if runCases && rep.Connection {
			fmt.Println(cyan("Reference cases"))
			for _, c := range samples.TestCases() {
				d, err := eng.Analyze(ctx, c.Symptoms, options())
				switch {
				case err != nil:
					check(c.Description, false, err.Error())
					passed = false
				case !strings.EqualFold(d.DominantDosha, c.ExpectedDosha):
					check(c.Description, false, fmt.Sprintf("expected %s, got %s", c.ExpectedDosha, d.DominantDosha))
					passed = false
				default:
					check(c.Description, true, d.Diagnosis)
				}
			}
		}

		if !passed {
			return fmt.Errorf("self test failed")
		}
		fmt.Println(green("All checks passed"))
		return nil
	})
}

// readSymptoms returns the non-empty, non-comment lines of path ("-" for stdin).
func readSymptoms(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

func writePage(path, title string, body template.HTML) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := display.Page(f, title, body); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
