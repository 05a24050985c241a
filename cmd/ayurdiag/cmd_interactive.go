package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ayurdiag/internal/diagnosis"
	"ayurdiag/internal/tui"
	"ayurdiag/internal/watch"
	"ayurdiag/internal/web"
)

var (
	serveAddr  string
	serveWatch bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the terminal chat and diagnosis interface",
	RunE:  runChat,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web widget and JSON API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "re-ingest the raw document directory when it changes")
}

func runChat(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, a *app, eng *diagnosis.Engine) error {
		summary := a.svc.Summary()
		if summary == "" && !a.svc.Ready(ctx) {
			summary = "Knowledge base is empty; answers will not use retrieved context."
		}
		m := tui.New(ctx, eng, a.retriever, summary)
		if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
			return fmt.Errorf("terminal UI: %w", err)
		}
		return nil
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	return withEngine(func(ctx context.Context, a *app, eng *diagnosis.Engine) error {
		if serveWatch {
			if err := startWatch(ctx, a); err != nil {
				return err
			}
		}
		fmt.Printf("Serving on %s (ctrl+c to stop)\n", bold("http://"+displayHost(addr)))
		return web.NewServer(eng, logger.Named("web")).ListenAndServe(ctx, addr)
	})
}

// startWatch re-indexes the raw document directory in the background after
// supported files change.
func startWatch(ctx context.Context, a *app) error {
	raw := a.cfg.Documents.RawPath
	w, err := watch.New(raw, 2*time.Second, a.loader.Supports, logger.Named("watch"))
	if err != nil {
		return err
	}
	go func() {
		_ = w.Run(ctx, func(ctx context.Context) error {
			rep, err := a.svc.IngestPaths(ctx, []string{raw})
			if err != nil {
				return err
			}
			logger.Info("re-indexed knowledge base",
				zap.Int("documents", rep.Documents.TotalDocuments),
				zap.Int("chunks", rep.Chunks.TotalChunks))
			return nil
		})
	}()
	logger.Info("watching knowledge base", zap.String("path", raw))
	return nil
}

func displayHost(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
