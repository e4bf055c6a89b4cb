package app

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/thedeuce2/ProWriter/internal/prose"
	"github.com/thedeuce2/ProWriter/internal/pw"
	"github.com/thedeuce2/ProWriter/internal/rubric"
)

// ReportWriter renders analysis results as plain text with numbers
// formatted for a locale.
type ReportWriter struct {
	p *message.Printer
}

// NewReportWriter creates a ReportWriter for tag.
func NewReportWriter(tag language.Tag) *ReportWriter {
	return &ReportWriter{p: message.NewPrinter(tag)}
}

// WriteReport writes the metrics, flag counts, flags and, when present,
// the cleaned text of r.
func (rw *ReportWriter) WriteReport(w io.Writer, r *pw.TextReport) error {
	p := rw.p
	m := r.Metrics
	var b strings.Builder

	if r.Source != "" {
		fmt.Fprintf(&b, "== %s ==\n", r.Source)
	}
	p.Fprintf(&b, "words %d  sentences %d  paragraphs %d  characters %d\n",
		m.WordCount, m.SentenceCount, m.ParagraphCount, m.CharCount)
	if m.Readability != nil {
		p.Fprintf(&b, "readability %.1f  ", *m.Readability)
	} else {
		b.WriteString("readability n/a  ")
	}
	p.Fprintf(&b, "avg sentence %.1f words  lexical diversity %.2f  dialogue %.0f%%\n",
		m.AvgSentenceWords, m.LexicalDiversity, m.DialogueRatio*100)

	c := r.Counts
	p.Fprintf(&b, "flags %d:", c.Total())
	for _, kind := range []prose.FlagKind{prose.Personification, prose.VagueLanguage, prose.AbstractSimile, prose.Cliche, prose.RhetoricalFrame, prose.Filler} {
		if n := c.Of(kind); n > 0 {
			p.Fprintf(&b, " %s=%d", kind, n)
		}
	}
	b.WriteByte('\n')

	for _, f := range r.Flags {
		p.Fprintf(&b, "  [%s] %s (%d): %s\n", f.Severity, f.Detector, len(f.Spans), f.Message)
		for _, s := range f.Spans {
			p.Fprintf(&b, "      %d-%d %q\n", s.Start, s.End, s.Snippet)
		}
	}
	if len(r.SuggestedOps) > 0 {
		p.Fprintf(&b, "suggested edits %d\n", len(r.SuggestedOps))
	}

	if r.CleanedText != nil {
		p.Fprintf(&b, "applied %d, skipped %d\n--- cleaned ---\n%s\n", len(r.Applied), len(r.Skipped), *r.CleanedText)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WritePlan writes a revision plan as three bulleted sections.
func (rw *ReportWriter) WritePlan(w io.Writer, plan *rubric.Plan) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Revision plan: %s\n", plan.Mode)
	section := func(title string, items []string) {
		rw.p.Fprintf(&b, "\n%s (%d)\n", title, len(items))
		for _, item := range items {
			fmt.Fprintf(&b, "  - %s\n", item)
		}
	}
	section("Rubric", plan.Rubric)
	section("Risks to avoid", plan.RisksToAvoid)
	section("Recommended passes", plan.RecommendedPasses)

	_, err := io.WriteString(w, b.String())
	return err
}
