package components

import (
	"strings"
	"sync/atomic"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Dimaray2024/xiaona/internal/subject"
	"github.com/Dimaray2024/xiaona/internal/ui/theme"
)

// ContentWidth returns the inner width used for centered cards.
func ContentWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), 72)
}

// Card wraps content in a rounded border at the given content width.
func Card(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw).
		Padding(0, 1).
		Render(content)
}

// ErrorLine renders a message the student must act on.
func ErrorLine(msg string) string {
	return lipgloss.NewStyle().Foreground(theme.Error).Render(msg)
}

// Spinner frames for pending model calls.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner renders frame n of the loading spinner followed by label.
func Spinner(n int, label string) string {
	f := spinnerFrames[n%len(spinnerFrames)]
	return lipgloss.NewStyle().Foreground(theme.Primary).Render(f) + " " +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(label)
}

// SpinnerTickMsg advances the spinner owned by ID.
type SpinnerTickMsg struct {
	ID int64
}

var spinnerIDs atomic.Int64

// NewSpinnerID returns an id unique to the calling screen so ticks meant
// for a screen lower in the stack are ignored.
func NewSpinnerID() int64 {
	return spinnerIDs.Add(1)
}

// SpinnerTick schedules the next frame for id.
func SpinnerTick(id int64) tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return SpinnerTickMsg{ID: id}
	})
}

// Mistake renders one graded mistake as a card: subject badge and problem,
// then the reason and the correct steps as emphasized markup.
func Mistake(subj subject.Subject, problem, reason, steps string, cw int) string {
	var b strings.Builder
	b.WriteString(theme.SubjectBadge(subj) + " " + theme.Body.Render(problem))
	b.WriteString("\n\n" + theme.Strong.Render("错误原因") + "\n" + theme.Markup.Render(reason))
	b.WriteString("\n\n" + theme.Strong.Render("正确步骤") + "\n" + theme.Markup.Render(steps))
	return Card(b.String(), cw)
}
