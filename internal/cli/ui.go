package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3498db")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ecc71"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f1c40f"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e74c3c"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

func okf(format string, a ...any) {
	fmt.Println("  " + successStyle.Render(fmt.Sprintf(format, a...)))
}

func warnf(format string, a ...any) {
	fmt.Println("  " + warnStyle.Render(fmt.Sprintf(format, a...)))
}
