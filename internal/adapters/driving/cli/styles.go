package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/catalyst-match/identity/internal/core/domain"
)

// Terminal styles for connector state rendering.
var (
	styleConnected  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleConnecting = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleError      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleMuted      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleName       = lipgloss.NewStyle().Bold(true)
)

// renderState colours a link state for terminal output.
func renderState(state domain.LinkState) string {
	switch state {
	case domain.LinkConnected:
		return styleConnected.Render(string(state))
	case domain.LinkConnecting, domain.LinkSyncing:
		return styleConnecting.Render(string(state))
	case domain.LinkError:
		return styleError.Render(string(state))
	default:
		return styleMuted.Render(string(state))
	}
}
