package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/pb33f/flowscope/config"
	"github.com/pb33f/flowscope/motor"
	"github.com/pb33f/flowscope/tui"
)

// LaunchTUI runs the flow browser. The capture is loaded behind the loading screen.
func LaunchTUI(ctx context.Context, harFile string, cfg *config.Config) error {
	logger := GetLogger()

	model := tui.NewFlowViewModel(ctx, filepath.Base(harFile), func(ctx context.Context) (*motor.Store, error) {
		return LoadFlowStore(ctx, harFile, cfg, logger)
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	// drop tag subscriptions
	if m, ok := finalModel.(*tui.FlowViewModel); ok {
		if err := m.Cleanup(); err != nil {
			return fmt.Errorf("cleanup error: %w", err)
		}
	}

	return nil
}
