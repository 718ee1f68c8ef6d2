package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/compozy/flowctl/internal/domain"
)

// Printer writes user-facing workflow output. Steps and results go to
// stdout; diagnostics belong to the logger, not here.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a Printer writing to stdout.
func NewPrinter() *Printer {
	return &Printer{out: os.Stdout}
}

// NewPrinterTo creates a Printer writing to w, for tests.
func NewPrinterTo(w io.Writer) *Printer {
	return &Printer{out: w}
}

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

// Step reports one action of a running workflow.
func (p *Printer) Step(format string, args ...any) {
	fmt.Fprintf(p.out, "%s %s\n", cyan("·"), fmt.Sprintf(format, args...))
}

// Success reports a completed operation.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintf(p.out, "%s %s\n", green("✓"), fmt.Sprintf(format, args...))
}

// Warn reports something the user should know but that does not stop the
// workflow.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintf(p.out, "%s %s\n", yellow("!"), fmt.Sprintf(format, args...))
}

// Info prints a plain line.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintf(p.out, "%s\n", fmt.Sprintf(format, args...))
}

// Cancelled reports a user-initiated abort.
func (p *Printer) Cancelled() {
	fmt.Fprintf(p.out, "%s\n", yellow("Cancelled."))
}

// Error reports a failed operation with its remedy when one is attached.
func (p *Printer) Error(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", red("✗"), err.Error())
	if remedy := domain.RemedyOf(err); remedy != "" {
		fmt.Fprintf(p.out, "  %s %s\n", cyan("→"), remedy)
	}
}
