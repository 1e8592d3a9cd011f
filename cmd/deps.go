package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Dimaray2024/xiaona/internal/auth"
	"github.com/Dimaray2024/xiaona/internal/chat"
	"github.com/Dimaray2024/xiaona/internal/config"
	"github.com/Dimaray2024/xiaona/internal/homework"
	"github.com/Dimaray2024/xiaona/internal/imaging"
	"github.com/Dimaray2024/xiaona/internal/llm"
	"github.com/Dimaray2024/xiaona/internal/mistakes"
	"github.com/Dimaray2024/xiaona/internal/practice"
	"github.com/Dimaray2024/xiaona/internal/screens/home"
	"github.com/Dimaray2024/xiaona/internal/store"
	"github.com/Dimaray2024/xiaona/internal/tutor"
	"github.com/Dimaray2024/xiaona/internal/view"
)

// env holds everything a command needs, built from flags and config.
type env struct {
	cfg        config.Config
	dbPath     string
	store      *store.Store
	logger     *slog.Logger
	auth       *auth.Directory
	mistakes   *mistakes.Repository
	compressor *imaging.Compressor

	// tutor is nil when no provider could be built; providerErr says why.
	tutor       *tutor.Tutor
	providerErr error
}

// openEnv loads the config, opens the store, loads the mistake log and
// builds the model provider when a key is configured.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, dbPath, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return buildEnv(cmd, cfg, dbPath, slog.Default())
}

// loadConfig reads the config and applies the --db flag.
func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("load config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		return config.Config{}, "", fmt.Errorf("resolve DB path: %w", err)
	}
	return cfg, dbPath, nil
}

func buildEnv(cmd *cobra.Command, cfg config.Config, dbPath string, logger *slog.Logger) (*env, error) {
	st, err := store.Open(dbPath, store.WithQuota(cfg.Storage.QuotaBytes))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	e := &env{
		cfg:        cfg,
		dbPath:     dbPath,
		store:      st,
		logger:     logger,
		compressor: cfg.Compressor(),
	}
	kv := st.KV()
	e.auth = auth.NewDirectory(kv, auth.WithLogger(logger))
	e.mistakes = mistakes.NewRepository(kv, e.compressor, mistakes.WithLogger(logger))
	e.mistakes.Load(cmd.Context())

	if err := cfg.LLM.Validate(); err != nil {
		e.providerErr = err
		return e, nil
	}
	provider, err := llm.NewProvider(cmd.Context(), cfg.LLM, st.EventRepo())
	if err != nil {
		e.providerErr = err
		return e, nil
	}
	e.tutor = tutor.New(provider, cfg.Tutor, tutor.WithLogger(logger))
	return e, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

// requireTutor fails commands that cannot work without a model.
func (e *env) requireTutor() (*tutor.Tutor, error) {
	if e.tutor == nil {
		return nil, fmt.Errorf("model provider not configured: %w", e.providerErr)
	}
	return e.tutor, nil
}

func (e *env) homework() *homework.Service {
	return homework.NewService(e.tutor, e.mistakes, homework.WithLogger(e.logger))
}

func (e *env) projector() view.Projector {
	return view.Projector{Locale: e.cfg.Locale}
}

// homeDeps wires the TUI. Model-backed services stay nil without a
// provider so the menu can show the placeholder.
func (e *env) homeDeps() home.Deps {
	deps := home.Deps{
		Auth:      e.auth,
		Mistakes:  e.mistakes,
		Projector: e.projector(),
		Logger:    e.logger,
	}
	if e.tutor == nil {
		return deps
	}
	deps.Homework = e.homework()
	deps.Practice = practice.NewFlow(e.tutor)
	deps.NewChat = func() *chat.Conversation {
		return chat.New(e.tutor, e.compressor, chat.WithLogger(e.logger))
	}
	return deps
}
