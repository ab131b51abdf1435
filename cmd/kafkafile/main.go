package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tendant/kafka-files/pkg/kafkafile"
	"github.com/tendant/kafka-files/pkg/kafkafile/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	_ = godotenv.Load()

	rootCmd := NewRootCommand(registryFromEnv)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// RegistryFactory opens the registry a command operates on.
type RegistryFactory func(ctx context.Context, verbose bool) (kafkafile.Registry, io.Closer, error)

// Each CLI invocation is a new process, so the stores must outlive it.
const (
	defaultDatabaseURL = "sqlite://kafkafile.db"
	defaultStorageURL  = "file://kafkafile-data"
)

var errMemoryStore = errors.New("memory stores do not persist between commands; set DATABASE_URL and STORAGE_URL to a database and a file or s3 store")

// loadConfig reads the environment, falling back to a local sqlite database
// and file store when DATABASE_URL or STORAGE_URL is unset.
func loadConfig() (*config.ServerConfig, error) {
	opts := []config.Option{config.WithEnv()}
	if _, ok := os.LookupEnv("DATABASE_URL"); !ok {
		opts = append(opts, config.WithDatabaseURL(defaultDatabaseURL))
	}
	if _, ok := os.LookupEnv("STORAGE_URL"); !ok {
		opts = append(opts, config.WithStorageURL(defaultStorageURL))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.DatabaseType == "memory" || cfg.StorageType == "memory" {
		return nil, errMemoryStore
	}
	return cfg, nil
}

func registryFromEnv(ctx context.Context, verbose bool) (kafkafile.Registry, io.Closer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if verbose {
		logger.Debug("configuration loaded", "database", cfg.DatabaseType, "storage", cfg.StorageType)
	}

	return cfg.BuildRegistry(ctx, logger)
}

func NewRootCommand(factory RegistryFactory) *cobra.Command {
	var verbose bool
	var operator string

	rootCmd := &cobra.Command{
		Use:   "kafkafile",
		Short: "Manage Kafka server packages and config files",
		Long: `Kafka file registry command line interface

Registers, replaces, lists and previews Kafka server packages (.tgz) and
server config files (.properties). The metadata store and blob backend are
selected with DATABASE_URL and STORAGE_URL, as for the server, and default
to ./kafkafile.db and ./kafkafile-data.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&operator, "operator", defaultOperator(), "name recorded as the operator of changes")

	rootCmd.AddCommand(NewUploadCommand(factory))
	rootCmd.AddCommand(NewReplaceCommand(factory))
	rootCmd.AddCommand(NewDeleteCommand(factory))
	rootCmd.AddCommand(NewListCommand(factory))
	rootCmd.AddCommand(NewPreviewCommand(factory))
	rootCmd.AddCommand(NewEnumsCommand())

	return rootCmd
}

func defaultOperator() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "cli"
}

// withRegistry opens the registry for the duration of fn
func withRegistry(cmd *cobra.Command, factory RegistryFactory, fn func(kafkafile.Registry) error) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	registry, closer, err := factory(cmd.Context(), verbose)
	if err != nil {
		return err
	}
	defer closer.Close()
	return fn(registry)
}
