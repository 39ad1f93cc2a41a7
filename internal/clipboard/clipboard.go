// Package clipboard delivers exported text to the user's clipboard.
package clipboard

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// Writer puts text on a clipboard.
type Writer interface {
	Write(text string) error
}

// System uses the platform clipboard (pbcopy, xclip/xsel, wl-copy, Windows API).
type System struct{}

func (System) Write(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard: no clipboard utility found")
	}
	if err := clipboard.WriteAll(normalize(text)); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	return nil
}

// OSC52 asks the terminal to set the clipboard. Works over SSH when the
// terminal supports it.
type OSC52 struct {
	Out io.Writer
	// Tmux wraps the sequence for tmux passthrough.
	Tmux bool
}

func (o OSC52) Write(text string) error {
	out := o.Out
	if out == nil {
		out = os.Stderr
	}
	seq := osc52.New(normalize(text))
	if o.Tmux {
		seq = seq.Tmux()
	}
	if _, err := seq.WriteTo(out); err != nil {
		return fmt.Errorf("osc52: %w", err)
	}
	return nil
}

// Func adapts a function to Writer.
type Func func(string) error

func (f Func) Write(text string) error { return f(text) }

// New picks a writer by mode name: "system" (default), "osc52" or "tmux".
func New(mode string) Writer {
	switch strings.ToLower(mode) {
	case "osc52":
		return OSC52{}
	case "tmux":
		return OSC52{Tmux: true}
	default:
		return System{}
	}
}

func normalize(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
