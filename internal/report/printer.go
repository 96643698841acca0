package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/oshokin/infusion-controller/internal/session"
)

// bannerWidth is the width of header and footer rules.
const bannerWidth = 70

// Printer writes human-readable output to a writer.
type Printer struct {
	// out receives the rendered text.
	out io.Writer
	// critical colours critical alarms.
	critical *color.Color
	// warning colours advisory alarms and failed scenarios.
	warning *color.Color
	// normal colours healthy status and passed scenarios.
	normal *color.Color
	// title colours banners.
	title *color.Color
}

// Option configures a Printer.
type Option func(*Printer)

// WithoutColor disables ANSI colours regardless of the terminal.
func WithoutColor() Option {
	return func(p *Printer) {
		for _, c := range []*color.Color{p.critical, p.warning, p.normal, p.title} {
			c.DisableColor()
		}
	}
}

// NewPrinter creates a printer writing to out.
func NewPrinter(out io.Writer, opts ...Option) *Printer {
	p := &Printer{
		out:      out,
		critical: color.New(color.FgRed, color.Bold),
		warning:  color.New(color.FgYellow),
		normal:   color.New(color.FgGreen),
		title:    color.New(color.Bold),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Banner writes a title framed by rules.
func (p *Printer) Banner(title string) {
	rule := strings.Repeat("=", bannerWidth)

	_, _ = fmt.Fprintln(p.out, rule)
	_, _ = p.title.Fprintln(p.out, title)
	_, _ = fmt.Fprintln(p.out, rule)
}

// Section writes a sub-heading.
func (p *Printer) Section(title string) {
	_, _ = fmt.Fprintf(p.out, "\n%s\n%s\n", title, strings.Repeat("-", bannerWidth/2+15))
}

// Cycle writes the full status of one control cycle.
func (p *Printer) Cycle(c session.Cycle, total int, interval time.Duration) {
	elapsed := time.Duration(c.Index) * interval

	_, _ = fmt.Fprintf(p.out, "\n--- Update %d/%d (t=%.1fs) ---\n", c.Index+1, total, elapsed.Seconds())

	_, _ = fmt.Fprintln(p.out, "Vital Signs:")
	_, _ = fmt.Fprintf(p.out, "  HR:   %6.1f bpm\n", c.Vitals.HeartRate)
	_, _ = fmt.Fprintf(p.out, "  MAP:  %6.1f mmHg\n", c.Vitals.MeanArterialPressure)
	_, _ = fmt.Fprintf(p.out, "  RR:   %6.1f breaths/min\n", c.Vitals.RespiratoryRate)
	_, _ = fmt.Fprintf(p.out, "  SpO2: %6.1f %%\n", c.Vitals.Saturation)

	_, _ = fmt.Fprintln(p.out, "Control:")
	_, _ = fmt.Fprintf(p.out, "  PID Error:      %7.3f\n", c.Controller.Error)
	_, _ = fmt.Fprintf(p.out, "  PID Output:     %7.3f\n", c.Controller.Output)
	_, _ = fmt.Fprintf(p.out, "  Infusion Rate:  %3d (target %d)\n", c.Command, c.Target)
	_, _ = fmt.Fprintf(p.out, "  Anesthesia Lvl: %5.2f\n", c.AnesthesiaLevel)

	switch {
	case c.Report.Critical():
		_, _ = p.critical.Fprintf(p.out, "\nALARM (critical, infusion stopped): %s\n", c.Report)
	case c.Report.Active():
		_, _ = p.warning.Fprintf(p.out, "\nALARM: %s\n", c.Report)
	default:
		_, _ = p.normal.Fprintln(p.out, "\nStatus: Normal")
	}
}

// Sample writes a one-line summary of a cycle.
func (p *Printer) Sample(c session.Cycle, interval time.Duration) {
	elapsed := time.Duration(c.Index) * interval

	_, _ = fmt.Fprintf(p.out, "t=%.0fs: HR=%.1f, MAP=%.1f, Rate=%d\n",
		elapsed.Seconds(), c.Vitals.HeartRate, c.Vitals.MeanArterialPressure, c.Command)
}

// Detail writes an indented informational line.
func (p *Printer) Detail(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

// Outcome writes a pass or fail line.
func (p *Printer) Outcome(passed bool, message string) {
	if passed {
		_, _ = p.normal.Fprintf(p.out, "PASS: %s\n", message)

		return
	}

	_, _ = p.critical.Fprintf(p.out, "FAIL: %s\n", message)
}
