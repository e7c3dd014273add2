// Package diag hosts the diagnostic plumbing shared by the passes: a
// structured Diagnostic type rendered by a Reporter onto an explicit
// output sink, colorized pass-summary helpers, and the internal-compiler-
// error panic used for caller contract violations.
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Kind names a diagnostic category. The recoverable kinds never surface
// as errors — passes consume them internally and at most report them here
// for visibility; MalformedIR aborts the pass via ICE.
type Kind string

const (
	KindMalformedIR Kind = "malformed-ir"
	KindNoPreheader Kind = "no-preheader"
	KindNotInDomain Kind = "not-in-domain"
)

// Diagnostic is one reportable condition observed by a pass.
type Diagnostic struct {
	Kind    Kind
	Pass    string
	Message string
	Context string // rendered instruction or block, when one is at hand
}

// Reporter formats diagnostics and pass summaries onto a single sink.
type Reporter struct {
	out io.Writer
}

// NewReporter wraps out; nil means os.Stdout.
func NewReporter(out io.Writer) *Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &Reporter{out: out}
}

// Report renders d as a bold-tagged header line plus dim context lines.
func (r *Reporter) Report(d Diagnostic) {
	tag := color.New(color.FgYellow, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(r.out, "%s[%s]: %s\n", tag("warning"), d.Kind, d.Message)
	if d.Pass != "" {
		fmt.Fprintf(r.out, "  %s %s\n", dim("-->"), d.Pass)
	}
	if d.Context != "" {
		fmt.Fprintf(r.out, "  %s %s\n", dim("│"), d.Context)
	}
}

// Successf writes a green pass-summary line.
func (r *Reporter) Successf(format string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(r.out, format+"\n", args...)
}

// Failf writes a red failure line.
func (r *Reporter) Failf(format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(r.out, format+"\n", args...)
}
