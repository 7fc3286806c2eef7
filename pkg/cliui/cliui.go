// Package cliui provides reusable terminal UI helpers (spinners, step indicators,
// markdown rendering, output sanitizing) for dialchat commands.
package cliui

import (
	"fmt"
	"io"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

var (
	SuccessMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
	StepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))

	// Styles for config and chat output.
	KeyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	ValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	DimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	NameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)

	UserPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).Render("> ")
	AssistantPrefix = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true).Render("AI: ")
)

// spinnerFrames is the braille dot spinner.
var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

type spinner struct {
	w       io.Writer
	msg     string
	done    chan struct{}
	stopped chan struct{}
}

func startSpinner(w io.Writer, msg string) *spinner {
	s := &spinner{
		w:       w,
		msg:     msg,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.spin()
	return s
}

func (s *spinner) spin() {
	defer close(s.stopped)
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		fmt.Fprintf(s.w, "\r  %s %s", spinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)]), s.msg)
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}
	}
}

// stop halts the animation and clears its line. No frame is written after
// stop returns.
func (s *spinner) stop() {
	close(s.done)
	<-s.stopped
	fmt.Fprint(s.w, "\r"+ansi.EraseEntireLine)
}

// Step prints an animated spinner while fn runs, then replaces it with
// a ✓ or ✗ checkmark and elapsed time.
func Step(w io.Writer, msg string, fn func() error) error {
	sp := startSpinner(w, msg)

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	sp.stop()
	fmt.Fprintf(w, "  %s %s %s\n",
		Mark(err),
		msg,
		StepStyle.Render(fmt.Sprintf("(%s)", FormatDuration(elapsed))),
	)

	return err
}

// Mark returns a ✓ for nil errors or ✗ for non-nil errors.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

// FormatDuration formats a duration for display (e.g. "12ms" or "3.2s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// RenderMarkdown renders markdown content for terminal display using glamour.
// NO_COLOR and CLICOLOR=0 select the plain style.
// On failure the content is returned unchanged alongside the error.
func RenderMarkdown(content string) (string, error) {
	style := glamour.WithAutoStyle()
	if termenv.EnvNoColor() {
		style = glamour.WithStandardStyle(styles.NoTTYStyle)
	}

	r, err := glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}

	return rendered, nil
}

// Sanitize removes terminal escape sequences from model output before it is
// echoed to the console.
func Sanitize(s string) string {
	return ansi.Strip(s)
}

// maxPendingEscape bounds how much of an unfinished escape sequence
// StreamSanitizer holds back before giving up on it.
const maxPendingEscape = 4 * 1024

const (
	bel = 0x07
	esc = 0x1b
)

// StreamSanitizer strips escape sequences from text that arrives in pieces.
// A sequence split across two pieces is held back until it completes, so no
// part of it reaches the terminal. The zero value is ready to use.
type StreamSanitizer struct {
	pending string
}

// Write returns the printable part of piece, holding back a trailing escape
// sequence that has not finished yet.
func (s *StreamSanitizer) Write(piece string) string {
	text := s.pending + piece
	s.pending = ""

	cut := incompleteEscape(text)
	if cut < 0 {
		return Sanitize(text)
	}
	if len(text)-cut > maxPendingEscape {
		return Sanitize(text[:cut])
	}
	s.pending = text[cut:]
	return Sanitize(text[:cut])
}

// Flush discards a held-back sequence that never completed and returns what
// remains printable, which is usually nothing.
func (s *StreamSanitizer) Flush() string {
	rest := s.pending
	s.pending = ""
	if rest == "" {
		return ""
	}
	return Sanitize(rest)
}

// incompleteEscape returns the offset of an escape sequence that starts in
// text but does not end in it, or -1.
func incompleteEscape(text string) int {
	for i := 0; i < len(text); i++ {
		if text[i] != esc {
			continue
		}
		end := escapeEnd(text, i)
		if end < 0 {
			return i
		}
		i = end - 1
	}
	return -1
}

// escapeEnd returns the offset just past the escape sequence starting at
// text[start], or -1 if text ends first.
func escapeEnd(text string, start int) int {
	i := start + 1
	if i >= len(text) {
		return -1
	}

	switch text[i] {
	case '[':
		// CSI: parameters and intermediates, then a final byte 0x40-0x7e.
		for i++; i < len(text); i++ {
			if text[i] >= 0x40 && text[i] <= 0x7e {
				return i + 1
			}
		}
		return -1

	case ']', 'P', '_', '^', 'X':
		// OSC, DCS, APC, PM, SOS: a string ended by BEL or ST (ESC \).
		for i++; i < len(text); i++ {
			switch text[i] {
			case bel:
				return i + 1
			case esc:
				if i+1 >= len(text) {
					return -1
				}
				if text[i+1] == '\\' {
					return i + 2
				}
			}
		}
		return -1

	default:
		// ESC, intermediates 0x20-0x2f, one final byte.
		for i < len(text) && text[i] >= 0x20 && text[i] <= 0x2f {
			i++
		}
		if i >= len(text) {
			return -1
		}
		return i + 1
	}
}
