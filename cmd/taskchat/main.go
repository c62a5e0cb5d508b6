// Package main provides the taskchat CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"taskchat/internal/config"
	"taskchat/internal/llm"
	"taskchat/internal/logging"
	"taskchat/internal/orchestrator"
	"taskchat/internal/store"
	"taskchat/internal/tools"
)

var (
	// Global flags
	workspace string
	projectID string
	verbose   bool
	dryRun    bool
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "taskchat",
	Short: "taskchat - turn chat messages into project tasks and memories",
	Long: `taskchat is a conversational assistant for software project management.

It classifies each chat message, breaks actionable requests into typed
tasks with repaired parent/child links, records decisions and specs as
project memories, and keeps replies within a transport-safe size.

Run "taskchat chat" for an interactive session or "taskchat ask" for a
single turn.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(workspace)
		if err != nil {
			return err
		}

		zapCfg := zap.NewProductionConfig()
		zapCfg.Level = logging.Level()
		zapCfg.OutputPaths = []string{"stderr"}
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		base, err := zapCfg.Build()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logging.Init(base, verbose || cfg.Logging.DebugMode)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", ".", "workspace directory holding .taskchat/")
	rootCmd.PersistentFlags().StringVarP(&projectID, "project", "p", "default", "project id to operate on")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "use an in-memory store and a canned model (no API key needed)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(initCmd)
}

// initCmd writes a default config file into the workspace.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .taskchat/config.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(config.Path(workspace)); err == nil {
			return fmt.Errorf("config already exists at %s", config.Path(workspace))
		}
		if err := config.Default().Save(workspace); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", config.Path(workspace))
		return nil
	},
}

// session bundles everything a command needs for processing turns.
type session struct {
	orch  *orchestrator.Orchestrator
	store store.Store
	cfg   config.Config
}

// newSession wires config, store, model and orchestrator. The caller
// owns the returned session and must Close it.
func newSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load(workspace)
	if err != nil {
		return nil, err
	}
	prompts, err := config.LoadPrompts(workspace)
	if err != nil {
		return nil, err
	}

	var st *store.SQLiteStore
	if dryRun {
		st, err = store.NewMemoryStore()
	} else {
		st, err = store.NewSQLiteStore(cfg.DatabasePath)
	}
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := st.EnsureProject(ctx, projectID); err != nil {
		st.Close()
		return nil, err
	}

	var model llm.Client
	if dryRun {
		model = llm.NewScriptedClient(
			`{"intent": "chat", "confidence": 1.0, "reason": "dry run"}`,
			"This is a dry run; no model is configured.",
		)
	} else {
		model, err = llm.NewClient(ctx, llm.ProviderConfig{
			Provider:    cfg.LLM.Provider,
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout(),
		})
		if err != nil {
			st.Close()
			return nil, err
		}
	}

	registry := tools.NewRegistry()
	tools.RegisterProjectTools(registry, st)

	logging.BootInfo("taskchat ready (provider=%s project=%s)", cfg.LLM.Provider, projectID)
	return &session{
		orch:  orchestrator.New(model, st, registry, prompts, cfg.MaxResponseLength),
		store: st,
		cfg:   cfg,
	}, nil
}

func (s *session) Close() {
	s.store.Close()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
