package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhisek/lernpath/internal/obslog"
	"github.com/abhisek/lernpath/internal/store"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "lernpath",
	Short: "Adaptive goal-path tutor",
	Long:  "Lernpath — AI-native tutor that turns a learning goal into a concept path and walks it with you: material, chat, gap repair, tests.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	defer obslog.Sync()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := initializeConfig(); err != nil {
			return err
		}

		logCfg := obslog.Config{
			Level:      viper.GetString("log.level"),
			File:       viper.GetString("log.file"),
			MaxSizeMB:  viper.GetInt("log.max_size_mb"),
			MaxBackups: viper.GetInt("log.max_backups"),
			MaxAgeDays: viper.GetInt("log.max_age_days"),
			Compress:   viper.GetBool("log.compress"),
		}
		// TUI commands own the terminal; console log lines would tear the
		// rendered screen, so they only get the file core (if configured).
		if cmd == rootCmd || cmd.Name() == "learn" {
			logCfg.Quiet = true
		}
		obslog.Setup(logCfg)
		return nil
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.config/lernpath/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides LERNPATH_DB env var)")
	rootCmd.PersistentFlags().String("user", "learner", "Learner ID to act as")
	rootCmd.PersistentFlags().Bool("sim", false, "Use the offline simulated tutor (no API keys needed)")

	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(goalsCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// initializeConfig reads the optional config file and binds LERNPATH_*
// environment variables.
func initializeConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "lernpath"))
		}
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("LERNPATH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config file: %w", err)
		}
		// No config file; environment and flags carry the settings.
	}
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the viper db setting (config file or LERNPATH_DB), then the default
// XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if p := viper.GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
