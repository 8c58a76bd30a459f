package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/yanizio/regform/internal/registration"
)

var (
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failureStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	hintStyle    = lipgloss.NewStyle().Faint(true)
)

// toaster prints outcome notifications as styled terminal lines.
type toaster struct {
	mu  sync.Mutex
	out io.Writer
}

var _ registration.Notifier = (*toaster)(nil)

func (t *toaster) Notify(_ context.Context, n registration.Notification) {
	style := successStyle
	mark := "✔"
	if n.Level == registration.LevelError {
		style, mark = failureStyle, "✘"
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, style.Render(mark+" "+n.Message))
}
