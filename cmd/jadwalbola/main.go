package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/matthewjhunter/jadwalbola"
	"github.com/matthewjhunter/jadwalbola/internal/logging"
	"github.com/matthewjhunter/jadwalbola/internal/output"
	"github.com/matthewjhunter/jadwalbola/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	configPath   string
	cfg          *storage.Config
	outputFormat string
	logger       = zap.NewNop()
)

func main() {
	rootCmd := newRootCmd()
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "jadwalbola",
		Short:         "Favorite teams, match predictions and session checks for the JadwalBola app",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(configPath)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config/config.yaml", "config file path (.yaml or .toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "output format: json, text, human")

	rootCmd.AddCommand(favoritesCmd())
	rootCmd.AddCommand(predictionsCmd())
	rootCmd.AddCommand(sessionCmd())
	rootCmd.AddCommand(initConfigCmd())
	return rootCmd
}

func loadConfig(path string) error {
	var err error
	cfg, err = storage.LoadConfig(path)
	if err != nil {
		return err
	}

	l, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	logger = l
	return nil
}

func newFormatter(cmd *cobra.Command) (*output.Formatter, error) {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	return output.NewFormatterWithWriters(format, cmd.OutOrStdout(), cmd.ErrOrStderr()), nil
}

// openEngine opens the database named in the config. Callers must Close it.
func openEngine() (*jadwalbola.Engine, error) {
	return jadwalbola.NewEngine(jadwalbola.EngineConfig{
		DBPath:      cfg.Database.Path,
		BusyTimeout: time.Duration(cfg.Database.BusyTimeoutMS) * time.Millisecond,
		Logger:      logger,
	})
}

func initConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Create a default config file",
		// init-config must work before any config exists.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := filepath.Dir(configPath)
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}

			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("config file already exists: %s", configPath)
			}

			data, err := encodeConfig(configPath, storage.DefaultConfig())
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}

			if err := os.WriteFile(configPath, data, 0600); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created default config at %s\n", configPath)
			return nil
		},
	}
}

func encodeConfig(path string, c *storage.Config) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return yaml.Marshal(c)
}
