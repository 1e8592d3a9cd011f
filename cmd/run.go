package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Dimaray2024/xiaona/internal/app"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	cfg, dbPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to a file beside the database.
	logPath := filepath.Join(filepath.Dir(dbPath), "xiaona.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	level := slog.LevelInfo
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	e, err := buildEnv(cmd, cfg, dbPath, logger)
	if err != nil {
		return err
	}
	defer e.Close()

	if e.tutor == nil {
		fmt.Fprintln(os.Stderr, "Model provider not configured:", e.providerErr)
		fmt.Fprintln(os.Stderr, "AI features will be unavailable.")
	}

	return app.Run(app.Options{Deps: e.homeDeps()})
}
