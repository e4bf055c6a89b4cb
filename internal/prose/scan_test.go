package prose_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/thedeuce2/ProWriter/internal/prose"
)

func flagByDetector(res prose.ScanResult, name string) *prose.Flag {
	for i := range res.Flags {
		if res.Flags[i].Detector == name {
			return &res.Flags[i]
		}
	}
	return nil
}

func TestScan_Personification(t *testing.T) {
	t.Run("inanimate subject with human verb", func(t *testing.T) {
		text := "The wind begged for mercy."
		res := prose.Scan(text)

		if res.Counts.Personification != 1 {
			t.Fatalf("Counts.Personification = %d, want 1", res.Counts.Personification)
		}
		flag := flagByDetector(res, "personified_action")
		if flag == nil {
			t.Fatal("personified_action flag missing")
		}
		want := []prose.Span{{Start: 0, End: 15, Snippet: "The wind begged"}}
		if !reflect.DeepEqual(flag.Spans, want) {
			t.Errorf("Spans = %+v, want %+v", flag.Spans, want)
		}
		if flag.Kind != prose.Personification || flag.Severity != prose.SeverityWarn {
			t.Errorf("flag = (%s, %s), want (personification, warn)", flag.Kind, flag.Severity)
		}
		if len(res.SuggestedOps) != 0 {
			t.Errorf("SuggestedOps = %+v, want none", res.SuggestedOps)
		}
	})

	t.Run("human subject is skipped", func(t *testing.T) {
		res := prose.Scan("The old man sighed. A tired woman wept.")
		if res.Counts.Personification != 0 {
			t.Errorf("Counts.Personification = %d, want 0", res.Counts.Personification)
		}
	})

	t.Run("sound noun is replaced", func(t *testing.T) {
		text := "A mournful sigh of wind filled the hall."
		res := prose.Scan(text)
		flag := flagByDetector(res, "anthropomorphic_sound")
		if flag == nil {
			t.Fatal("anthropomorphic_sound flag missing")
		}
		if got := flag.Spans[0].Snippet; got != "mournful sigh" {
			t.Errorf("Snippet = %q, want %q", got, "mournful sigh")
		}
		applied := prose.Apply(text, res.SuggestedOps)
		if want := "A mournful sound of wind filled the hall."; applied.Text != want {
			t.Errorf("Apply() = %q, want %q", applied.Text, want)
		}
	})

	t.Run("article sound noun of object", func(t *testing.T) {
		res := prose.Scan("She heard the groan of the floorboards.")
		flag := flagByDetector(res, "anthropomorphic_sound")
		if flag == nil {
			t.Fatal("anthropomorphic_sound flag missing")
		}
		if got := flag.Spans[0].Snippet; got != "the groan of the floorboards" {
			t.Errorf("Snippet = %q", got)
		}
	})

	t.Run("whisper idiom keeps case and plural", func(t *testing.T) {
		tests := []struct {
			text string
			want string
		}{
			{"There was a whisper of doubt.", "There was a trace of doubt."},
			{"Whispers of smoke rose.", "Traces of smoke rose."},
			{"A WHISPER of light.", "A TRACE of light."},
		}
		for _, tt := range tests {
			t.Run(tt.text, func(t *testing.T) {
				res := prose.Scan(tt.text)
				if flagByDetector(res, "whisper_of") == nil {
					t.Fatal("whisper_of flag missing")
				}
				if got := prose.Apply(tt.text, res.SuggestedOps).Text; got != tt.want {
					t.Errorf("Apply() = %q, want %q", got, tt.want)
				}
			})
		}
	})
}

func TestScan_VagueAndFiller(t *testing.T) {
	text := "It was very, very strange."
	res := prose.Scan(text)

	if res.Counts.VagueLanguage < 2 {
		t.Errorf("Counts.VagueLanguage = %d, want >= 2", res.Counts.VagueLanguage)
	}
	filler := flagByDetector(res, "filler_words")
	if filler == nil {
		t.Fatal("filler_words flag missing")
	}
	for _, s := range filler.Spans {
		if !strings.EqualFold(s.Snippet, "very") {
			t.Errorf("filler span snippet = %q, want very", s.Snippet)
		}
	}

	deletes := 0
	for _, op := range res.SuggestedOps {
		if op.Kind == prose.Filler {
			if op.Op != prose.OpDelete {
				t.Errorf("filler op = %s, want delete", op.Op)
			}
			if !strings.Contains(op.Span.Snippet, "very") {
				t.Errorf("filler op snippet = %q, want it to contain very", op.Span.Snippet)
			}
			deletes++
		}
		if op.Kind == prose.VagueLanguage {
			t.Errorf("vague language produced op %+v", op)
		}
	}
	if deletes != 2 {
		t.Errorf("filler deletes = %d, want 2", deletes)
	}
}

func TestScan_Cliche(t *testing.T) {
	t.Run("delete round trip", func(t *testing.T) {
		text := "Time stood still. She ran."
		res := prose.Scan(text)

		flag := flagByDetector(res, "cliche")
		if flag == nil {
			t.Fatal("cliche flag missing")
		}
		if flag.Severity != prose.SeverityError {
			t.Errorf("Severity = %s, want error", flag.Severity)
		}
		if got := flag.Spans[0]; got.Start != 0 || got.End != 16 {
			t.Errorf("span = [%d,%d), want [0,16)", got.Start, got.End)
		}

		var ops []prose.EditOp
		for _, op := range res.SuggestedOps {
			if op.Kind == prose.Cliche {
				ops = append(ops, op)
			}
		}
		if len(ops) != 1 || ops[0].Op != prose.OpDelete {
			t.Fatalf("cliche ops = %+v, want one delete", ops)
		}
		if got := prose.Apply(text, ops).Text; got != ". She ran." {
			t.Errorf("Apply() = %q, want %q", got, ". She ran.")
		}
	})

	t.Run("longest phrase wins", func(t *testing.T) {
		res := prose.Scan("He let out a breath he didn't know he was holding.")
		flag := flagByDetector(res, "cliche")
		if flag == nil {
			t.Fatal("cliche flag missing")
		}
		if len(flag.Spans) != 1 {
			t.Fatalf("Spans = %+v, want 1", flag.Spans)
		}
		if !strings.HasPrefix(flag.Spans[0].Snippet, "let out") {
			t.Errorf("Snippet = %q, want the full phrase", flag.Spans[0].Snippet)
		}
	})
}

func TestScan_FramesAndSimiles(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		detector string
		kind     prose.FlagKind
	}{
		{"didn't just", "The storm didn't just pass — it tore the roof off.", "rhetorical_flourish", prose.RhetoricalFrame},
		{"not just but", "It was not just a house, but a home.", "rhetorical_flourish", prose.RhetoricalFrame},
		{"it wasn't it was", "It wasn't anger. It was grief.", "rhetorical_flourish", prose.RhetoricalFrame},
		{"abstract simile", "Her voice was like a forgotten memory.", "abstract_simile", prose.AbstractSimile},
		{"moralizing tagline", "It was enough to haunt you.", "moralizing_tagline", prose.RhetoricalFrame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := prose.Scan(tt.text)
			flag := flagByDetector(res, tt.detector)
			if flag == nil {
				t.Fatalf("Scan(%q) has no %s flag; flags = %+v", tt.text, tt.detector, res.Flags)
			}
			if flag.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", flag.Kind, tt.kind)
			}
			for _, op := range res.SuggestedOps {
				if op.Kind == tt.kind && tt.kind != prose.Personification {
					t.Errorf("unexpected op %+v", op)
				}
			}
		})
	}
}

func TestScan_Invariants(t *testing.T) {
	text := "The wind begged for mercy. It was very, very strange. Time stood still. " +
		"A whisper of doubt lingered like a forgotten memory. It was enough to ruin you."

	t.Run("is deterministic", func(t *testing.T) {
		first := prose.Scan(text)
		for i := 0; i < 5; i++ {
			if got := prose.Scan(text); !reflect.DeepEqual(got, first) {
				t.Fatalf("Scan() run %d differs", i)
			}
		}
	})

	t.Run("spans index the input", func(t *testing.T) {
		res := prose.Scan(text)
		for _, f := range res.Flags {
			for _, s := range f.Spans {
				if s.Start < 0 || s.End > len(text) || s.Start >= s.End {
					t.Fatalf("%s span [%d,%d) out of bounds", f.Detector, s.Start, s.End)
				}
				if text[s.Start:s.End] != s.Snippet {
					t.Errorf("%s snippet = %q, text has %q", f.Detector, s.Snippet, text[s.Start:s.End])
				}
			}
		}
	})

	t.Run("flags follow battery order", func(t *testing.T) {
		res := prose.Scan(text)
		order := map[string]int{}
		for i, name := range prose.DetectorNames() {
			order[name] = i
		}
		for i := 1; i < len(res.Flags); i++ {
			if order[res.Flags[i-1].Detector] >= order[res.Flags[i].Detector] {
				t.Errorf("flag %s before %s", res.Flags[i-1].Detector, res.Flags[i].Detector)
			}
		}
	})

	t.Run("counts match spans", func(t *testing.T) {
		res := prose.Scan(text)
		total := 0
		for _, f := range res.Flags {
			total += len(f.Spans)
		}
		if res.Counts.Total() != total {
			t.Errorf("Counts.Total() = %d, spans = %d", res.Counts.Total(), total)
		}
	})

	t.Run("caps span counts", func(t *testing.T) {
		long := strings.Repeat("very ", 200)
		res := prose.Scan(long)
		if res.Counts.Filler != 80 {
			t.Errorf("Counts.Filler = %d, want 80", res.Counts.Filler)
		}
		if res.Counts.VagueLanguage != 80 {
			t.Errorf("Counts.VagueLanguage = %d, want 80", res.Counts.VagueLanguage)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		res := prose.Scan("")
		if len(res.Flags) != 0 || len(res.SuggestedOps) != 0 || res.Counts.Total() != 0 {
			t.Errorf("Scan(\"\") = %+v, want empty", res)
		}
	})
}
