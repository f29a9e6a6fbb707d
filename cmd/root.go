package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pb33f/flowscope/config"
	"github.com/pb33f/flowscope/motor"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	verbose        bool
	searchURL      string
	searchParams   bool
	categoriesPath string
	logFile        string
	Logger         *slog.Logger

	settings *config.Config

	rootCmd = &cobra.Command{
		Use:   "flowscope <har-file>",
		Short: "Browse captured HTTP flows in the terminal",
		Long: `Flowscope loads a HAR capture and shows every request/response pair as a
flow. Select a flow to open its detail panel, flag flows of interest and ask
the search service for flows similar to the one you are looking at.`,
		Args: cobra.ExactArgs(1),
		Example: `  flowscope recording.har
  flowscope recording.har --search-url http://localhost:8585
  flowscope recording.har --categories categories.yaml -v`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(os.Stderr)
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			settings = cfg
			return nil
		},
		RunE: runFlowscope,
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&categoriesPath, "categories", "", "YAML file with extra category rules")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file used while the terminal UI is running")
	rootCmd.Flags().StringVar(&searchURL, "search-url", "", "Base URL of a remote search service (default: search in process)")
	rootCmd.Flags().BoolVar(&searchParams, "search-params", false, "Send search queries as URL parameters (HoneyProxy style services)")

	// reconfigured in PersistentPreRunE once flags are parsed
	setupLogger(os.Stderr)
}

func runFlowscope(cmd *cobra.Command, args []string) error {
	harFile := args[0]

	if err := ValidateHARFile(harFile); err != nil {
		return fmt.Errorf("invalid HAR file: %w", err)
	}

	// the terminal UI owns the screen, logs go to a rotating file instead
	logs := newLogFile(settings.LogFile)
	defer logs.Close()
	setupLogger(logs)

	if err := LaunchTUI(cmd.Context(), harFile, settings); err != nil {
		return fmt.Errorf("failed to launch TUI: %w", err)
	}

	return nil
}

// resolveConfig layers explicitly set flags over the environment
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("search-url") {
		cfg.SearchURL = searchURL
	}
	if flags.Changed("search-params") {
		cfg.SearchQueryParams = searchParams
	}
	if flags.Changed("categories") {
		cfg.CategoriesPath = categoriesPath
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if flags.Changed("port") {
		cfg.Port = port
	}
	return cfg, nil
}

// setupLogger configures the global slog logger based on the verbose flag
func setupLogger(w io.Writer) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts = &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: true,
		}
	}

	Logger = slog.New(slog.NewTextHandler(w, opts))
	slog.SetDefault(Logger)

	if verbose {
		Logger.Debug("verbose logging enabled",
			"level", slog.LevelDebug.String(),
			"pid", os.Getpid())
	}
}

func newLogFile(filename string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}
}

// GetLogger returns the global logger instance
func GetLogger() *slog.Logger {
	if Logger == nil {
		setupLogger(os.Stderr)
	}
	return Logger
}

// ValidateHARFile checks the path exists and is not a directory
func ValidateHARFile(harFile string) error {
	if harFile == "" {
		return fmt.Errorf("HAR file path is required")
	}

	info, err := os.Stat(harFile)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("HAR file does not exist: %s", harFile)
		}
		return fmt.Errorf("error accessing HAR file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("provided path is a directory, not a file: %s", harFile)
	}

	return nil
}

// LoadFlowStore reads a capture into a store using the configured category rules and
// wires the similarity searcher: a remote client when a search URL is set, otherwise
// an in-process engine over the store itself.
func LoadFlowStore(ctx context.Context, harFile string, cfg *config.Config, logger *slog.Logger) (*motor.Store, error) {
	registry, err := config.LoadRegistry(cfg.CategoriesPath)
	if err != nil {
		return nil, err
	}

	opts := motor.DefaultStoreOptions()
	opts.Logger = logger

	logger.Debug("reading capture...", "file", harFile)
	store, err := motor.LoadStore(ctx, harFile, registry, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load capture: %w", err)
	}
	store.SetSearcher(newSearcher(cfg, store))

	stats := store.Stats()
	logger.Info("capture loaded",
		"flows", store.Len(),
		"fingerprint", store.Fingerprint(),
		"load_time", stats.LoadTime,
		"categories", store.Categories(),
		"remote_search", cfg.SearchURL != "")

	if creator := store.Creator(); creator != nil {
		logger.Debug("HAR creator", "name", creator.Name, "version", creator.Version)
	}
	if browser := store.Browser(); browser != nil {
		logger.Debug("HAR browser", "name", browser.Name, "version", browser.Version)
	}

	return store, nil
}

func newSearcher(cfg *config.Config, store *motor.Store) motor.Searcher {
	if cfg.SearchURL != "" {
		var opts []motor.SearchClientOption
		if cfg.SearchQueryParams {
			opts = append(opts, motor.WithQueryParams())
		}
		return motor.NewSearchClient(cfg.SearchURL, nil, cfg.SearchTimeout, opts...)
	}
	return motor.NewSearchEngine(store, motor.DefaultEngineOptions)
}
