package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/ledgerdesk/internal/ledger"
)

// Catppuccin Mocha
const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorSapphire lipgloss.Color = "#74c7ec"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
	colorMantle   lipgloss.Color = "#181825"
)

const (
	colorAccent  = colorPink
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorMuted   = colorOverlay1
)

// categoryColors has ledger.CategoryTones entries.
var categoryColors = []lipgloss.Color{colorGreen, colorTeal, colorPeach, colorBlue, colorMauve, colorSapphire}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	tabStyle       = lipgloss.NewStyle().Foreground(colorMuted)
	tabActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(colorText).Background(colorSurface1)
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorFocus)
	cursorStyle    = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	focusCellStyle = lipgloss.NewStyle().Underline(true)
	editCellStyle  = lipgloss.NewStyle().Foreground(colorText).Background(colorSurface0)
	preselStyle    = lipgloss.NewStyle().Reverse(true)
	savingStyle    = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
	selectedStyle  = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	statusStyle    = lipgloss.NewStyle().Foreground(colorText).Background(colorSurface0)
	statusErrStyle = lipgloss.NewStyle().Foreground(colorError).Background(colorSurface0).Bold(true)
	modalStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(0, 1)
	alertStyle     = modalStyle.BorderForeground(colorError)
	kpiLabelStyle  = lipgloss.NewStyle().Foreground(colorMuted).Width(10)
	kpiValueStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorText).Width(14).Align(lipgloss.Right)
	footerStyle    = lipgloss.NewStyle().Background(colorMantle)
)

// toneStyle colours a cell by its derived tone.
func toneStyle(t ledger.Tone) lipgloss.Style {
	switch t {
	case ledger.ToneMorning:
		return lipgloss.NewStyle().Foreground(colorYellow)
	case ledger.ToneEvening:
		return lipgloss.NewStyle().Foreground(colorLavender)
	}
	if i := t.CategoryIndex(); i >= 0 && i < len(categoryColors) {
		return lipgloss.NewStyle().Foreground(categoryColors[i])
	}
	return lipgloss.NewStyle()
}
