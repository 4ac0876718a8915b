package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/backend"
	"github.com/abhisek/lingo/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "lingo",
	Short: "Spoken language lessons in the terminal",
	Long:  "Lingo is a terminal client for practicing language lessons with typed and spoken answers.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnv()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, 0, "", "")
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides LINGO_DB env var)")
	rootCmd.PersistentFlags().String("api-url", "", "Lesson API base URL (overrides LINGO_API_URL env var)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(statusesCmd)
	rootCmd.AddCommand(speakCmd)
	rootCmd.AddCommand(sayCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadEnv reads LINGO_ENV_FILE, or .env in the working directory when it
// exists. Variables already set in the environment win.
func loadEnv() error {
	path := os.Getenv("LINGO_ENV_FILE")
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("env file %s not found", path)
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// resolveStoreConfig returns the database configuration using --db
// (highest priority), then LINGO_DB_DRIVER/LINGO_DB_DSN, then LINGO_DB
// and the default XDG path.
func resolveStoreConfig(cmd *cobra.Command) (store.Config, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return store.Config{Driver: store.DriverSQLite, DSN: p}, store.EnsureDir(p)
	}
	return store.ConfigFromEnv()
}

// openStore opens the event store.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := resolveStoreConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database: %w", err)
	}
	st, err := store.OpenConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// newBackend creates the lesson API client. A non-nil repo records every
// call for `lingo log`.
func newBackend(cmd *cobra.Command, repo store.EventRepo) (backend.Backend, error) {
	cfg := backend.ConfigFromEnv()
	if u, _ := cmd.Flags().GetString("api-url"); u != "" {
		cfg.BaseURL = u
	}
	client, err := backend.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("configure lesson API: %w", err)
	}
	if repo == nil {
		return client, nil
	}
	return backend.WithLogging(client, repo), nil
}
