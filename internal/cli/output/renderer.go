// Package output provides the renderer used by CLI commands for user-facing
// text, with color styling on TTYs and plain text everywhere else.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
)

// Mode selects how output is rendered.
type Mode string

const (
	// ModeAuto styles output when the writer is a color-capable TTY.
	ModeAuto Mode = "auto"
	// ModeText forces styled output.
	ModeText Mode = "text"
	// ModePlain disables styling.
	ModePlain Mode = "plain"
)

// Renderer writes user-facing output. Diagnostic output goes through slog
// instead; the renderer is only for the lines an operator reads.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	styles *Styles
}

// NewRenderer creates a renderer for the given writers and mode.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	color := false
	switch mode {
	case ModeText:
		color = true
	case ModePlain:
		color = false
	default:
		color = isColorTerminal(out)
	}
	return &Renderer{out: out, errOut: errOut, styles: newStyles(color)}
}

// Out returns the underlying stdout writer, for table rendering.
func (r *Renderer) Out() io.Writer { return r.out }

// Styles returns the style set matching the renderer's mode.
func (r *Renderer) Styles() *Styles { return r.styles }

// Println writes a line to stdout.
func (r *Renderer) Println(a ...any) {
	fmt.Fprintln(r.out, a...)
}

// Printf writes formatted output to stdout.
func (r *Renderer) Printf(format string, a ...any) {
	fmt.Fprintf(r.out, format, a...)
}

// Errorf writes formatted output to stderr.
func (r *Renderer) Errorf(format string, a ...any) {
	fmt.Fprintf(r.errOut, format, a...)
}

func isColorTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return termenv.NewOutput(f).Profile != termenv.Ascii
}
