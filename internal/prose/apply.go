package prose

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// MaxApplyOps bounds the number of ops a single Apply call considers.
const MaxApplyOps = 200

// Reasons an op is not applied.
const (
	SkipOverlap    = "overlap"
	SkipOutOfRange = "out_of_range"
	SkipUnknownOp  = "unknown_op"
	SkipOverLimit  = "over_limit"
)

// SkippedOp is an op Apply declined, with the reason.
type SkippedOp struct {
	EditOp
	Reason string `json:"reason"`
}

// ApplyResult is the output of Apply. Applied is in the order ops were spliced.
type ApplyResult struct {
	Text    string      `json:"text"`
	Applied []EditOp    `json:"applied"`
	Skipped []SkippedOp `json:"skipped,omitempty"`
}

// Apply splices ops into text. All spans refer to the original text.
//
// Ops are put in canonical order (start, end, op, replacement, kind, note) so the
// result never depends on the order they were passed in. Only the first
// MaxApplyOps in that order are considered. They are then applied from the
// highest start down, so earlier offsets stay valid. An op whose span reaches
// into a region already rewritten is skipped as overlapping; adjacent spans
// are fine.
func Apply(text string, ops []EditOp) ApplyResult {
	ordered := make([]EditOp, len(ops))
	copy(ordered, ops)
	sort.SliceStable(ordered, func(i, j int) bool {
		return opLess(ordered[i], ordered[j])
	})

	result := ApplyResult{Applied: []EditOp{}}
	if len(ordered) > MaxApplyOps {
		for _, op := range ordered[MaxApplyOps:] {
			result.Skipped = append(result.Skipped, SkippedOp{EditOp: op, Reason: SkipOverLimit})
		}
		ordered = ordered[:MaxApplyOps]
	}

	var b strings.Builder
	out := text
	limit := len(text)
	for i := len(ordered) - 1; i >= 0; i-- {
		op := ordered[i]
		var replacement string
		switch op.Op {
		case OpDelete:
		case OpReplace:
			replacement = op.Replacement
		default:
			result.Skipped = append(result.Skipped, SkippedOp{EditOp: op, Reason: SkipUnknownOp})
			continue
		}
		if !validSpan(text, op.Span) {
			result.Skipped = append(result.Skipped, SkippedOp{EditOp: op, Reason: SkipOutOfRange})
			continue
		}
		if op.Span.End > limit {
			result.Skipped = append(result.Skipped, SkippedOp{EditOp: op, Reason: SkipOverlap})
			continue
		}

		b.Reset()
		b.Grow(len(out) - op.Span.Len() + len(replacement))
		b.WriteString(out[:op.Span.Start])
		b.WriteString(replacement)
		b.WriteString(out[op.Span.End:])
		out = b.String()

		limit = op.Span.Start
		result.Applied = append(result.Applied, op)
	}

	result.Text = out
	return result
}

func opLess(a, b EditOp) bool {
	if a.Span.Start != b.Span.Start {
		return a.Span.Start < b.Span.Start
	}
	if a.Span.End != b.Span.End {
		return a.Span.End < b.Span.End
	}
	if a.Op != b.Op {
		return a.Op < b.Op
	}
	if a.Replacement != b.Replacement {
		return a.Replacement < b.Replacement
	}
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.Note < b.Note
}

func validSpan(text string, s Span) bool {
	if s.Start < 0 || s.End < s.Start || s.End > len(text) {
		return false
	}
	return onRuneBoundary(text, s.Start) && onRuneBoundary(text, s.End)
}

func onRuneBoundary(text string, i int) bool {
	return i == 0 || i == len(text) || utf8.RuneStart(text[i])
}

// CleanText scans text and applies every suggested op.
func CleanText(text string) (ScanResult, ApplyResult) {
	scan := Scan(text)
	return scan, Apply(text, scan.SuggestedOps)
}
