package cmd

import (
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/pb33f/flowscope/tui"
)

const flowscopeASCII = `  __ _
 / _| | _____      _____  ___ ___  _ __   ___
| |_| |/ _ \ \ /\ / / __|/ __/ _ \| '_ \ / _ \
|  _| | (_) \ V  V /\__ \ (_| (_) | |_) |  __/
|_| |_|\___/ \_/\_/ |___/\___\___/| .__/ \___|
                                  |_|`

// RenderBanner returns the styled banner shown by the version command
func RenderBanner() string {
	banner := lipgloss.NewStyle().
		Foreground(tui.RGBPink).
		Bold(true).
		Render(flowscopeASCII)

	subtitle := lipgloss.NewStyle().
		Foreground(tui.RGBBlue).
		Italic(true).
		Render("HTTP flows, one panel at a time")

	return lipgloss.NewStyle().
		MarginBottom(1).
		Render(banner + "\n" + subtitle)
}
