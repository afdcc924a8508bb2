package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/confab/badgeforge/internal/assets"
	"github.com/confab/badgeforge/internal/attendee"
	"github.com/confab/badgeforge/internal/badge"
	"github.com/confab/badgeforge/internal/cleanup"
	"github.com/confab/badgeforge/internal/config"
	"github.com/confab/badgeforge/internal/server"
	"github.com/confab/badgeforge/internal/store"
)

var (
	verbose bool
	envFile string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "badgeforge",
	Short: "Event badge rendering service",
	Long: `badgeforge renders print-accurate attendee badges: 4-up A4 sheets
with crop marks, 1-up full-bleed pages, and a matching HTML preview.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the badge HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}
		st, err := store.Open(cfg.DSN())
		if err != nil {
			return err
		}
		defer st.Close()

		srv := server.New(logger, st, assets.NewFetcher(), assets.NewCache(cfg.AssetDir),
			cfg.PublicBaseURL, cfg.Production())
		httpServer := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           srv.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", zap.String("addr", cfg.ListenAddr))
			errCh <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		}
	},
}

var (
	generateEvent  string
	generateOut    string
	generateSingle bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render an event's badges straight to a PDF file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}
		st, err := store.Open(cfg.DSN())
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		if _, err := st.Event(ctx, generateEvent); err != nil {
			return err
		}
		records, err := st.Attendees(ctx, generateEvent)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("no attendees found for event %s", generateEvent)
		}

		projected := make([]attendee.Projected, len(records))
		for i, rec := range records {
			projected[i] = attendee.Project(rec, generateEvent, cfg.PublicBaseURL)
		}

		theme := badge.DefaultTheme()
		cache := assets.NewCache(cfg.AssetDir)
		if img, err := cache.Load("logo.png"); err == nil {
			theme.Logo = img
		}
		if img, err := cache.Load("background.jpg"); err == nil {
			theme.Background = img
		}

		renderer := badge.NewRenderer(logger)
		var pdfBytes []byte
		if generateSingle {
			pdfBytes, err = renderer.RenderSingle(projected, theme)
		} else {
			pdfBytes, err = renderer.RenderSheet(projected, theme)
		}
		if err != nil {
			return err
		}

		out := generateOut
		if out == "" {
			out = "badges-" + generateEvent + ".pdf"
		}
		if err := os.WriteFile(out, pdfBytes, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		logger.Info("badges written",
			zap.String("file", out), zap.Int("attendees", len(projected)))
		return nil
	},
}

var (
	cleanupEvent  string
	cleanupDryRun bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup-qr",
	Short: "Detect and rewrite corrupted attendee QR URLs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}
		st, err := store.Open(cfg.DSN())
		if err != nil {
			return err
		}
		defer st.Close()

		report, err := cleanup.Run(cmd.Context(), st, cleanupEvent, cfg.PublicBaseURL, cleanupDryRun, logger)
		if err != nil {
			return err
		}
		fmt.Printf("scanned %d, flagged %d, rewritten %d\n",
			report.Scanned, report.Flagged, report.Rewritten)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to .env file")

	generateCmd.Flags().StringVar(&generateEvent, "event", "", "event id (required)")
	generateCmd.Flags().StringVar(&generateOut, "out", "", "output file (default badges-<event>.pdf)")
	generateCmd.Flags().BoolVar(&generateSingle, "single", false, "render 1-up pages instead of the 4-up sheet")
	generateCmd.MarkFlagRequired("event")

	cleanupCmd.Flags().StringVar(&cleanupEvent, "event", "", "event id (required)")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "report corrupted QR URLs without rewriting")
	cleanupCmd.MarkFlagRequired("event")

	rootCmd.AddCommand(serveCmd, generateCmd, cleanupCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Sync()
		}
		os.Exit(1)
	}
	if logger != nil {
		logger.Sync()
	}
}
