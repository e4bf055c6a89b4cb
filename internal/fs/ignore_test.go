package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewIgnoreMatcher(t *testing.T) {
	m := NewIgnoreMatcher([]string{"", "  ", "# comment", "*.bak", "!keep.bak", "/drafts/", "[", "/"})
	if len(m.rules) != 3 {
		t.Fatalf("len(rules) = %d, want 3: %+v", len(m.rules), m.rules)
	}

	want := []ignoreRule{
		{glob: "*.bak"},
		{glob: "keep.bak", negate: true},
		{glob: "drafts", anchored: true, dirOnly: true},
	}
	for i, w := range want {
		if m.rules[i] != w {
			t.Errorf("rules[%d] = %+v, want %+v", i, m.rules[i], w)
		}
	}
}

func TestIgnoreMatcher_Match(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		rel      string
		isDir    bool
		want     bool
	}{
		{"basename glob in root", []string{"*.bak"}, "chapter1.bak", false, true},
		{"basename glob in subdirectory", []string{"*.bak"}, filepath.Join("part1", "chapter1.bak"), false, true},
		{"basename glob other extension", []string{"*.bak"}, "chapter1.md", false, false},
		{"exact basename", []string{"notes.txt"}, filepath.Join("research", "notes.txt"), false, true},
		{"path pattern", []string{"drafts/old"}, filepath.Join("drafts", "old"), true, true},
		{"path pattern wrong parent", []string{"drafts/old"}, filepath.Join("final", "old"), true, false},
		{"path pattern glob", []string{"drafts/*.txt"}, filepath.Join("drafts", "ch2.txt"), false, true},
		{"anchored matches at root", []string{"/notes.md"}, "notes.md", false, true},
		{"anchored skips nested", []string{"/notes.md"}, filepath.Join("part1", "notes.md"), false, false},
		{"directory rule matches directory", []string{"research/"}, "research", true, true},
		{"directory rule skips file", []string{"research/"}, "research", false, false},
		{"negation re-includes", []string{"*.md", "!final.md"}, "final.md", false, false},
		{"later rule wins over negation", []string{"!final.md", "*.md"}, "final.md", false, true},
		{"negation leaves others ignored", []string{"*.md", "!final.md"}, "draft.md", false, true},
		{"no patterns", nil, "anything.txt", false, false},
		{"malformed pattern is dropped", []string{"[", "*.tmp"}, "x.tmp", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewIgnoreMatcher(tt.patterns)
			if got := m.Match(tt.rel, tt.isDir); got != tt.want {
				t.Errorf("Match(%q, %v) = %v, want %v", tt.rel, tt.isDir, got, tt.want)
			}
		})
	}
}

func TestDefaultIgnorePatterns(t *testing.T) {
	m := NewIgnoreMatcher(defaultIgnorePatterns)
	for _, rel := range []string{IgnoreFileName, ".git", "ch1.md~", filepath.Join("part1", ".ch1.md.swp")} {
		if !m.Match(rel, false) {
			t.Errorf("Match(%q) = false, want true", rel)
		}
	}
	if m.Match("ch1.md", false) {
		t.Error("Match(ch1.md) = true, want false")
	}
}

func TestParseIgnoreFile(t *testing.T) {
	t.Run("reads lines", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), IgnoreFileName)
		if err := os.WriteFile(path, []byte("# scratch\n*.bak\n\n!keep.bak\n"), 0644); err != nil {
			t.Fatal(err)
		}

		lines, err := ParseIgnoreFile(path)
		if err != nil {
			t.Fatalf("ParseIgnoreFile() error = %v", err)
		}
		if len(lines) != 4 {
			t.Errorf("ParseIgnoreFile() returned %d lines, want 4", len(lines))
		}
	})

	t.Run("missing file", func(t *testing.T) {
		lines, err := ParseIgnoreFile(filepath.Join(t.TempDir(), IgnoreFileName))
		if err != nil {
			t.Fatalf("ParseIgnoreFile() error = %v", err)
		}
		if lines != nil {
			t.Errorf("ParseIgnoreFile() = %v, want nil", lines)
		}
	})
}
