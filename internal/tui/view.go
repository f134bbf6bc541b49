package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/oshokin/flipclock/internal/flip"
)

//nolint:gochecknoglobals // Render styles.
var (
	cardStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Foreground(lipgloss.Color("#EEEEEE")).Bold(true).Padding(0, 1)
	flippingCardStyle = cardStyle.BorderForeground(lipgloss.Color("#F7B801"))
	backDigitStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	separatorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true).Padding(1, 0)
	dateStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	titleStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	alarmStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	statusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

// View renders the cards, the date line, the alarm list and the prompt.
func (a *App) View() string {
	sections := []string{
		renderCards(a.clock.Slots()),
		dateStyle.Render(flip.Readout(a.clock.Now())),
		"",
		a.renderAlarms(),
	}

	if a.mode != modeClock {
		label := "New alarm"
		if a.mode == modeDelete {
			label = "Delete index"
		}

		sections = append(sections, "", fmt.Sprintf("%s: %s", label, a.input.View()))
	}

	if a.status != "" {
		style := statusStyle
		if a.statusErr {
			style = errorStyle
		}

		sections = append(sections, "", style.Render(a.status))
	}

	if a.mode == modeClock {
		sections = append(sections, "", a.help.View(clockKeys(a.keys)))
	} else {
		sections = append(sections, "", a.help.View(inputKeys(a.keys)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderCards draws HH:MM:SS as six cards. A flipping card shows its staged
// digit under the committed one.
func renderCards(slots [flip.SlotCount]flip.Slot) string {
	parts := make([]string, 0, flip.SlotCount+2)

	for i, slot := range slots {
		if i == int(flip.MinuteTens) || i == int(flip.SecondTens) {
			parts = append(parts, separatorStyle.Render(":"))
		}

		parts = append(parts, renderCard(slot))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func renderCard(slot flip.Slot) string {
	if !slot.Flipping {
		return cardStyle.Render(string(slot.Front) + "\n ")
	}

	return flippingCardStyle.Render(string(slot.Front) + "\n" + backDigitStyle.Render(string(slot.Back)))
}

func (a *App) renderAlarms() string {
	entries := a.clock.List()
	if len(entries) == 0 {
		return titleStyle.Render("Alarms") + "\n" + alarmStyle.Render("  none")
	}

	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, titleStyle.Render("Alarms"))

	for i, entry := range entries {
		lines = append(lines, alarmStyle.Render(fmt.Sprintf("  [%d] %s", i, entry)))
	}

	return strings.Join(lines, "\n")
}
