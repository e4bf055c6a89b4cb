package fs

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IgnoreFileName is the per-directory ignore file read by FindFiles.
const IgnoreFileName = ".pwignore"

// defaultIgnorePatterns are always applied before config and .pwignore rules,
// so either can re-include with "!".
var defaultIgnorePatterns = []string{IgnoreFileName, ".*", "*~", "*.swp"}

// ignoreRule is one parsed line of an ignore list.
type ignoreRule struct {
	glob     string
	anchored bool // match the slash path relative to the root instead of the basename
	dirOnly  bool // trailing "/": only directories match
	negate   bool // leading "!": a match re-includes
}

func (r ignoreRule) matches(relSlash string, isDir bool) bool {
	if r.dirOnly && !isDir {
		return false
	}
	target := path.Base(relSlash)
	if r.anchored {
		target = relSlash
	}
	ok, err := path.Match(r.glob, target)
	return err == nil && ok
}

// IgnoreMatcher decides which manuscript paths a scan skips.
//
// Rule syntax, one per line:
//
//	*.bak        basename glob, matches at any depth
//	drafts/old   contains "/": matched against the path relative to the root
//	/notes.md    leading "/": anchored to the root
//	research/    trailing "/": directories only
//	!final.md    re-include a path an earlier rule ignored
//
// Rules are evaluated in order and the last matching one wins.
type IgnoreMatcher struct {
	rules []ignoreRule
}

// NewIgnoreMatcher parses rawPatterns. Blank lines, "#" comments and
// malformed globs are dropped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		var r ignoreRule
		if strings.HasPrefix(raw, "!") {
			r.negate = true
			raw = raw[1:]
		}
		if strings.HasSuffix(raw, "/") {
			r.dirOnly = true
			raw = strings.TrimRight(raw, "/")
		}
		if strings.HasPrefix(raw, "/") {
			r.anchored = true
			raw = strings.TrimLeft(raw, "/")
		}
		if strings.Contains(raw, "/") {
			r.anchored = true
		}
		if raw == "" {
			continue
		}
		if _, err := path.Match(raw, ""); err != nil {
			continue
		}
		r.glob = raw
		m.rules = append(m.rules, r)
	}
	return m
}

// Match reports whether relativePath (OS separators, relative to the scan
// root) is ignored. isDir selects directory-only rules.
func (m *IgnoreMatcher) Match(relativePath string, isDir bool) bool {
	relSlash := filepath.ToSlash(relativePath)
	ignored := false
	for _, r := range m.rules {
		if r.matches(relSlash, isDir) {
			ignored = !r.negate
		}
	}
	return ignored
}

// ParseIgnoreFile reads an ignore file and returns its lines.
// A missing file yields nil and no error.
func ParseIgnoreFile(name string) ([]string, error) {
	f, err := os.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return lines, nil
}
