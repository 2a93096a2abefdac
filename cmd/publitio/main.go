package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tendant/publitio-go/pkg/publitio"
	"github.com/tendant/publitio-go/pkg/publitio/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	var configFile string
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "publitio",
		Short: "Publitio API command line client",
		Long: `Publitio API Command Line Interface

Makes signed calls against the Publitio API and prints the JSON response.
Credentials are read from PUBLITIO_API_KEY and PUBLITIO_API_SECRET (a .env
file in the working directory is loaded first) or from --config.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Duration("timeout", 0, "request timeout, overrides config (e.g. 45s)")

	// Add subcommands
	rootCmd.AddCommand(NewGetCommand())
	rootCmd.AddCommand(NewPutCommand())
	rootCmd.AddCommand(NewDeleteCommand())
	rootCmd.AddCommand(NewUploadCommand())
	rootCmd.AddCommand(NewSignCommand())

	return rootCmd
}

// loadConfigFromFlags reads the config file named by --config, then the environment.
func loadConfigFromFlags(cmd *cobra.Command) (*config.ClientConfig, error) {
	configFile, _ := cmd.Flags().GetString("config")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	opts := []config.Option{config.FromFile(configFile), config.FromEnv()}
	if timeout > 0 {
		opts = append(opts, config.WithTimeout(timeout))
	}
	return config.Load(opts...)
}

// NewClientFromFlags creates an API client based on command flags and environment variables
func NewClientFromFlags(cmd *cobra.Command) (*publitio.Client, *config.ClientConfig, error) {
	cfg, err := loadConfigFromFlags(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), isVerbose(cmd))
	logger.Debug("Configuration loaded", "base_url", cfg.BaseURL, "timeout", cfg.Timeout)

	client, err := cfg.BuildClient(publitio.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}

// parseParams turns repeated key=value flags into ordered parameters.
func parseParams(raw []string) (publitio.Params, error) {
	params := make(publitio.Params, 0, len(raw))
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", kv)
		}
		params = append(params, publitio.P(key, value))
	}
	return params, nil
}
