package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ayurdiag/internal/config"
	"ayurdiag/internal/logging"
)

var (
	// Global flags
	cfgPath string
	verbose bool

	cfg    *config.AppConfig
	logger *zap.Logger
)

var (
	bold    = color.New(color.Bold).SprintFunc()
	green   = color.New(color.FgGreen, color.Bold).SprintFunc()
	cyan    = color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow  = color.New(color.FgYellow).SprintFunc()
	red     = color.New(color.FgRed, color.Bold).SprintFunc()
	faint   = color.New(color.Faint).SprintFunc()
	magenta = color.New(color.FgMagenta, color.Bold).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:   "ayurdiag",
	Short: "Retrieval-augmented Ayurvedic diagnostic assistant",
	Long: `ayurdiag indexes a small Ayurvedic knowledge base, retrieves passages relevant
to a symptom description and asks a Gemini model for a structured dosha
diagnosis.

Start with "ayurdiag samples" and "ayurdiag ingest", then try "ayurdiag chat"
or "ayurdiag serve".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		if cfgPath == "" {
			cfg, _, err = config.LoadDefault()
		} else {
			cfg, err = config.Load(cfgPath)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		opts := logging.Options{
			Level:       cfg.Logging.Level,
			File:        cfg.Logging.File,
			Development: cfg.Logging.Development,
			// The terminal UI owns the screen.
			Quiet: cmd.Name() == "chat",
		}
		if verbose {
			opts.Level = "debug"
		}
		logger, err = logging.New(opts)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to YAML config (default ./config.yaml or ~/.config/ayurdiag/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		ingestCmd,
		queryCmd,
		diagnoseCmd,
		batchCmd,
		chatCmd,
		serveCmd,
		infoCmd,
		selftestCmd,
		samplesCmd,
	)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-c:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(c)
	}()
	return ctx, cancel
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red("error:"), err)
		os.Exit(1)
	}
}
