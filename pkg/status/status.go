package status

import (
	"fmt"
	"io"
	"os"

	"github.com/morikuni/aec"
)

// Printer writes the step lines of a release run to stderr, keeping
// stdout free for data output. Glyphs are colored unless Plain is set,
// so logs captured in CI stay readable.
type Printer struct {
	Out   io.Writer
	Plain bool
}

var (
	stepColor = aec.LightBlueF
	downColor = aec.LightCyanF
	upColor   = aec.LightMagentaF
	okColor   = aec.GreenF
	warnColor = aec.YellowF
)

func (p *Printer) w() io.Writer {
	if p.Out != nil {
		return p.Out
	}

	return os.Stderr
}

func (p *Printer) glyph(c aec.ANSI, g string) string {
	if p.Plain {
		return g
	}

	return c.Apply(g)
}

func (p *Printer) line(c aec.ANSI, g, format string, args ...interface{}) {
	fmt.Fprintf(p.w(), "%s %s\n", p.glyph(c, g), fmt.Sprintf(format, args...))
}

func (p *Printer) Step(format string, args ...interface{}) {
	p.line(stepColor, "→", format, args...)
}

func (p *Printer) Download(format string, args ...interface{}) {
	p.line(downColor, "↓", format, args...)
}

func (p *Printer) Upload(format string, args ...interface{}) {
	p.line(upColor, "↥", format, args...)
}

func (p *Printer) Done(format string, args ...interface{}) {
	p.line(okColor, "✓", format, args...)
}

func (p *Printer) Warn(format string, args ...interface{}) {
	p.line(warnColor, "!", format, args...)
}
