package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "xiaona",
	Short: "AI homework tutor for primary school students",
	Long: `小娜老师 — a terminal homework tutor. Photograph a problem to get a
step-by-step explanation, photograph finished homework to have it graded,
and keep every mistake in a mistake log for targeted practice.

A model API key is read from GEMINI_API_KEY, OPENAI_API_KEY,
ANTHROPIC_API_KEY or OPENROUTER_API_KEY, or from the config file.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides XIAONA_DB and the config file)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides XIAONA_CONFIG)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug details to stderr")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(mistakesCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

// setupLogging installs the default slog logger: warnings to stderr, or
// everything with --verbose.
func setupLogging(cmd *cobra.Command) {
	level := slog.LevelWarn
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
