package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/amharic-dictionary/dictsync/internal/cache"
)

// ConsoleNotifier renders cache update notifications as a boxed message with
// the available actions listed underneath.
type ConsoleNotifier struct {
	out   io.Writer
	title *color.Color
}

// NewConsoleNotifier writes to out, or stdout when out is nil.
func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleNotifier{
		out:   out,
		title: color.New(color.Bold),
	}
}

var _ cache.Notifier = (*ConsoleNotifier)(nil)

func (n *ConsoleNotifier) Show(notification cache.Notification) error {
	if _, err := n.title.Fprintln(n.out, notification.Title); err != nil {
		return fmt.Errorf("title.Fprintln() > %w", err)
	}
	if _, err := fmt.Fprintln(n.out, notification.Body); err != nil {
		return fmt.Errorf("fmt.Fprintln() > %w", err)
	}
	for _, action := range notification.Actions {
		if _, err := fmt.Fprintf(n.out, "  [%s] %s\n", action.ID, action.Title); err != nil {
			return fmt.Errorf("fmt.Fprintf() > %w", err)
		}
	}
	return nil
}
