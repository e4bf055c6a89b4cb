package prose_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/thedeuce2/ProWriter/internal/prose"
)

func del(text string, start, end int) prose.EditOp {
	return prose.EditOp{Op: prose.OpDelete, Span: prose.Span{Start: start, End: end, Snippet: text[start:end]}}
}

func repl(text string, start, end int, with string) prose.EditOp {
	return prose.EditOp{Op: prose.OpReplace, Span: prose.Span{Start: start, End: end, Snippet: text[start:end]}, Replacement: with}
}

func TestApply(t *testing.T) {
	t.Run("offsets refer to the original text", func(t *testing.T) {
		text := "one two three four"
		ops := []prose.EditOp{
			del(text, 0, 4),
			repl(text, 8, 13, "3"),
			del(text, 13, 18),
		}
		got := prose.Apply(text, ops)
		if got.Text != "two 3" {
			t.Errorf("Apply() = %q, want %q", got.Text, "two 3")
		}
		if len(got.Applied) != 3 || len(got.Skipped) != 0 {
			t.Errorf("applied = %d, skipped = %d, want 3, 0", len(got.Applied), len(got.Skipped))
		}
		if got.Applied[0].Span.Start != 13 {
			t.Errorf("first applied start = %d, want 13", got.Applied[0].Span.Start)
		}
	})

	t.Run("result is independent of input order", func(t *testing.T) {
		text := "It was very, very strange. Time stood still. A whisper of doubt."
		ops := prose.Scan(text).SuggestedOps
		if len(ops) < 3 {
			t.Fatalf("SuggestedOps = %d, want at least 3", len(ops))
		}

		reversed := make([]prose.EditOp, len(ops))
		for i, op := range ops {
			reversed[len(ops)-1-i] = op
		}
		rotated := append(append([]prose.EditOp{}, ops[1:]...), ops[0])

		want := prose.Apply(text, ops)
		for name, in := range map[string][]prose.EditOp{"reversed": reversed, "rotated": rotated} {
			if got := prose.Apply(text, in); !reflect.DeepEqual(got, want) {
				t.Errorf("%s: Apply() = %+v, want %+v", name, got, want)
			}
		}
	})

	t.Run("overlapping op is skipped", func(t *testing.T) {
		text := "abcdefghij"
		got := prose.Apply(text, []prose.EditOp{del(text, 0, 5), repl(text, 3, 8, "X")})
		if got.Text != "abcXij" {
			t.Errorf("Apply() = %q, want %q", got.Text, "abcXij")
		}
		if len(got.Skipped) != 1 || got.Skipped[0].Reason != prose.SkipOverlap {
			t.Errorf("Skipped = %+v, want one overlap", got.Skipped)
		}
	})

	t.Run("adjacent ops both apply", func(t *testing.T) {
		text := "abcdef"
		got := prose.Apply(text, []prose.EditOp{repl(text, 0, 3, "X"), repl(text, 3, 6, "Y")})
		if got.Text != "XY" {
			t.Errorf("Apply() = %q, want %q", got.Text, "XY")
		}
	})

	t.Run("invalid spans are skipped", func(t *testing.T) {
		text := "héllo"
		ops := []prose.EditOp{
			{Op: prose.OpDelete, Span: prose.Span{Start: 3, End: 100}},
			{Op: prose.OpDelete, Span: prose.Span{Start: -1, End: 1}},
			{Op: prose.OpDelete, Span: prose.Span{Start: 2, End: 4}},
		}
		got := prose.Apply(text, ops)
		if got.Text != text {
			t.Errorf("Apply() = %q, want unchanged", got.Text)
		}
		if len(got.Skipped) != 3 {
			t.Fatalf("Skipped = %+v, want 3", got.Skipped)
		}
		for _, s := range got.Skipped {
			if s.Reason != prose.SkipOutOfRange {
				t.Errorf("Reason = %s, want %s", s.Reason, prose.SkipOutOfRange)
			}
		}
	})

	t.Run("unknown op is skipped", func(t *testing.T) {
		got := prose.Apply("abc", []prose.EditOp{{Op: "uppercase", Span: prose.Span{Start: 0, End: 1}}})
		if got.Text != "abc" || len(got.Skipped) != 1 || got.Skipped[0].Reason != prose.SkipUnknownOp {
			t.Errorf("Apply() = %+v", got)
		}
	})

	t.Run("caps the number of ops", func(t *testing.T) {
		text := strings.Repeat("x", 250)
		var ops []prose.EditOp
		for i := 249; i >= 0; i-- {
			ops = append(ops, del(text, i, i+1))
		}
		got := prose.Apply(text, ops)
		if len(got.Applied) != prose.MaxApplyOps {
			t.Errorf("Applied = %d, want %d", len(got.Applied), prose.MaxApplyOps)
		}
		if len(got.Text) != 50 {
			t.Errorf("len(Text) = %d, want 50", len(got.Text))
		}
		for _, s := range got.Skipped {
			if s.Reason != prose.SkipOverLimit || s.Span.Start < prose.MaxApplyOps {
				t.Errorf("unexpected skip %+v", s)
			}
		}
	})

	t.Run("no ops", func(t *testing.T) {
		got := prose.Apply("unchanged", nil)
		if got.Text != "unchanged" || len(got.Applied) != 0 {
			t.Errorf("Apply() = %+v", got)
		}
	})
}

func TestCleanText(t *testing.T) {
	scan, applied := prose.CleanText("Time stood still. She was very tired.")
	if scan.Counts.Cliche != 1 || scan.Counts.Filler != 1 {
		t.Fatalf("Counts = %+v", scan.Counts)
	}
	if want := ". She was tired."; applied.Text != want {
		t.Errorf("CleanText() = %q, want %q", applied.Text, want)
	}
}
