package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/lernpath/internal/app"
	"github.com/abhisek/lernpath/internal/engine"
	"github.com/abhisek/lernpath/internal/llm"
	"github.com/abhisek/lernpath/internal/obslog"
	"github.com/abhisek/lernpath/internal/oracle"
	"github.com/abhisek/lernpath/internal/store"
)

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Start the terminal tutor",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// runApp opens the store, builds the engine, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	eng, err := buildEngine(cmd.Context(), cmd, st)
	if err != nil {
		return err
	}

	userID, _ := cmd.Flags().GetString("user")
	return app.Run(app.Deps{Engine: eng, Store: st, UserID: userID})
}

// buildEngine wires the content oracle, the journal, and the phase engine
// over an open store.
func buildEngine(ctx context.Context, cmd *cobra.Command, st *store.Store) (*engine.Engine, error) {
	o, err := resolveOracle(ctx, cmd, st)
	if err != nil {
		return nil, err
	}
	journal := engine.NewEventLog(st.EventRepo(), obslog.GetLogger())
	return engine.New(o, st, journal, engine.DefaultConfig()), nil
}

// resolveOracle picks the content source: --sim forces the offline
// simulator; otherwise an LLM provider comes from LERNPATH_* settings,
// falling back to probing the standard provider key env vars.
func resolveOracle(ctx context.Context, cmd *cobra.Command, st *store.Store) (oracle.ContentOracle, error) {
	if sim, _ := cmd.Flags().GetBool("sim"); sim {
		return oracle.NewSimulator(), nil
	}

	cfg := llm.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			return nil, fmt.Errorf("no LLM provider configured (%v); pass --sim for the offline simulated tutor", err)
		}
		cfg = discovered
	}

	provider, err := llm.NewProvider(ctx, cfg, st.EventRepo())
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}
	return oracle.NewService(provider, oracle.DefaultConfig()), nil
}
