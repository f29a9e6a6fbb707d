package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/v2/spinner"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/pb33f/flowscope/motor"
)

type LoadState int

const (
	LoadStateLoading LoadState = iota
	LoadStateLoaded
	LoadStateError
)

// StoreLoader builds the store the UI browses
type StoreLoader func(ctx context.Context) (*motor.Store, error)

type storeLoadedMsg struct {
	store    *motor.Store
	duration time.Duration
}

type storeErrorMsg struct {
	err error
}

func (m *FlowViewModel) startLoading() tea.Cmd {
	loader := m.loader
	ctx := m.ctx
	return func() tea.Msg {
		start := time.Now()
		store, err := loader(ctx)
		if err != nil {
			return storeErrorMsg{err: err}
		}
		return storeLoadedMsg{store: store, duration: time.Since(start)}
	}
}

func (m *FlowViewModel) renderLoadingView() string {
	frame := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center)

	title := TitleStyle.Render("Loading capture")
	file := SubtitleStyle.Render("\n" + m.fileName)

	return frame.Render(fmt.Sprintf("%s %s%s", m.loadingSpinner.View(), title, file))
}

func (m *FlowViewModel) renderErrorView() string {
	frame := ErrorStyle.
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center)

	return frame.Render(fmt.Sprintf("Error loading capture\n\n%v\n\nPress 'q' to quit", m.err))
}

func createLoadingSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(RGBPink)
	return s
}
