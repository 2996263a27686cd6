// Package ui renders analysis results and errors for the terminal.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/PinjariAbdul/smart-task-analyser/internal/analysis"
	"github.com/PinjariAbdul/smart-task-analyser/internal/batchfile"
	"github.com/PinjariAbdul/smart-task-analyser/internal/priority"
)

// Printer writes styled reports to a single writer.
type Printer struct {
	w  io.Writer
	st styles
}

// New creates a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w, st: newStyles(lipgloss.NewRenderer(w))}
}

// Report prints a ranked analysis.
func (p *Printer) Report(source string, resp *analysis.Response) {
	fmt.Fprintf(p.w, "%s %s\n", p.st.heading.Render(iconTask+" "+source),
		p.st.muted.Render(fmt.Sprintf("(%s, %s)", resp.Strategy, plural(len(resp.Tasks), "task"))))
	if len(resp.Tasks) == 0 {
		fmt.Fprintln(p.w, p.st.muted.Render("  no tasks"))
		return
	}
	for i, r := range resp.Tasks {
		p.row(i+1, r)
	}
}

func (p *Printer) row(rank int, r priority.Result) {
	fmt.Fprintf(p.w, "%s %s  %s %s %s\n",
		p.st.rank.Render(fmt.Sprintf("%d.", rank)),
		p.st.score.Render(fmt.Sprintf("%.2f", r.PriorityScore)),
		p.st.id.Render(r.ID),
		r.Title,
		p.st.muted.Render(fmt.Sprintf("[due %s, %sh, importance %d]", r.DueDate, Hours(r.EstimatedHours), r.Importance)),
	)
	fmt.Fprintf(p.w, "%s%s\n", strings.Repeat(" ", 14), p.st.detail.Render(r.Explanation))
}

// Rejected prints a structured analysis error.
func (p *Printer) Rejected(source string, res analysis.ErrorResult) {
	fmt.Fprintf(p.w, "%s %s\n", p.st.danger.Render(iconFailed+" "+source), p.st.danger.Render(res.Error))
	if len(res.CycleDetails) > 0 {
		fmt.Fprintf(p.w, "  cycle: %s\n", strings.Join(res.CycleDetails, iconArrow))
	}
	for _, d := range res.Details {
		fmt.Fprintf(p.w, "  %s %s\n", p.st.muted.Render("-"), d)
	}
}

// Valid prints a successful validation summary.
func (p *Printer) Valid(b *batchfile.Batch, resp *analysis.Response) {
	fmt.Fprintf(p.w, "%s: %s, no errors\n", p.st.success.Render(iconOK+" "+b.Source), plural(len(resp.Tasks), "task"))
	if len(b.Generated) > 0 {
		fmt.Fprintf(p.w, "  %s\n", p.st.muted.Render("generated ids: "+strings.Join(b.Generated, ", ")))
	}
}

// Strategies lists the supported strategies with their aliases.
func (p *Printer) Strategies(strategies []priority.Strategy) {
	for _, s := range strategies {
		line := p.st.id.Render(s.String())
		if aliases := s.Aliases(); len(aliases) > 0 {
			line += " " + p.st.muted.Render("("+strings.Join(aliases, ", ")+")")
		}
		fmt.Fprintf(p.w, "%s\n    %s\n", line, p.st.detail.Render(s.Description()))
	}
}

// Changed announces a watched file change.
func (p *Printer) Changed(c batchfile.Change) {
	fmt.Fprintf(p.w, "\n%s\n", p.st.heading.Render(fmt.Sprintf("── %s %s ──", c.File, c.Kind)))
}

// Error prints an error that is not an analysis result.
func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.w, "%s%s\n", p.st.danger.Render("error: "), msg)
}

// Info prints a de-emphasized message.
func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.w, p.st.muted.Render(msg))
}

// Hours formats an estimate without trailing zeros: 2, 1.5, 0.25.
func Hours(h float64) string {
	return humanize.Ftoa(h)
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return humanize.Comma(int64(n)) + " " + unit + "s"
}
