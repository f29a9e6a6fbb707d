package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pb33f/flowscope/motor"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var port int

var serveCmd = &cobra.Command{
	Use:   "serve <har-file>",
	Short: "Serve similarity search over a HAR file",
	Long: `Start an HTTP search service over the flows of a HAR file. Clients post a
JSON query to /api/search and receive the ids of matching flows. Point
flowscope --search-url at it to search from another terminal.`,
	Args: cobra.ExactArgs(1),
	Example: `  flowscope serve recording.har
  flowscope serve recording.har --port 8080
  flowscope serve recording.har -p 3000 -v`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default 8585, or FLOWSCOPE_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	harFile := args[0]

	if err := ValidateHARFile(harFile); err != nil {
		return err
	}

	if settings.Port < 1 || settings.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", settings.Port)
	}

	logs := newLogFile(settings.LogFile)
	defer logs.Close()
	setupLogger(io.MultiWriter(os.Stderr, logs))
	logger := GetLogger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := LoadFlowStore(ctx, harFile, settings, logger)
	if err != nil {
		return err
	}
	engine := motor.NewSearchEngine(store, motor.DefaultEngineOptions)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", settings.Port),
		Handler:           NewSearchHandler(engine),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("search service listening",
			"address", fmt.Sprintf("http://localhost:%d%s", settings.Port, motor.SearchPath),
			"flows", store.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("search service failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down search service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("search service shutdown failed: %w", err)
	}

	stats := engine.Stats()
	logger.Info("search service stopped",
		"queries", stats.Queries,
		"matches", stats.MatchesFound)
	return nil
}
