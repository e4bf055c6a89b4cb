package prose

import (
	"regexp"
	"sort"
	"strings"
)

// lexicon is a fixed list of words and phrases matched as whole words,
// case-insensitively, with any whitespace run between phrase words.
type lexicon struct {
	entries  []string
	patterns []*regexp.Regexp
}

func newLexicon(entries ...string) *lexicon {
	l := &lexicon{entries: entries}
	for _, e := range entries {
		l.patterns = append(l.patterns, regexp.MustCompile(phrasePattern(e, true)))
	}
	return l
}

// phrasePattern turns "couldn't help but" into a case-insensitive regexp source.
// Apostrophes match both the straight and the typographic form.
func phrasePattern(phrase string, wholeWord bool) string {
	fields := strings.Fields(phrase)
	for i, f := range fields {
		f = regexp.QuoteMeta(f)
		fields[i] = strings.ReplaceAll(f, "'", "['’]")
	}
	body := strings.Join(fields, `\s+`)
	if wholeWord {
		return `(?i)\b` + body + `\b`
	}
	return `(?i)` + body
}

// count sums the occurrences of every entry.
func (l *lexicon) count(text string) int {
	n := 0
	for _, p := range l.patterns {
		n += len(p.FindAllStringIndex(text, -1))
	}
	return n
}

// find returns non-overlapping matches in text order. When two entries
// overlap, the one starting first wins, and the longer one at equal starts.
func (l *lexicon) find(text string) [][2]int {
	var hits [][2]int
	for _, p := range l.patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			hits = append(hits, [2]int{loc[0], loc[1]})
		}
	}
	return dropOverlaps(hits)
}

// dropOverlaps sorts ranges by start ascending (longer first on ties) and
// discards any range that overlaps one already kept.
func dropOverlaps(hits [][2]int) [][2]int {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i][0] != hits[j][0] {
			return hits[i][0] < hits[j][0]
		}
		return hits[i][1] > hits[j][1]
	})
	kept := hits[:0]
	end := -1
	for _, h := range hits {
		if h[0] < end {
			continue
		}
		kept = append(kept, h)
		end = h[1]
	}
	return kept
}

var vagueWords = newLexicon(
	"somehow", "very", "kind of", "sort of", "something", "somewhat",
	"stuff", "things", "really", "quite", "rather", "a bit", "a little",
	"pretty much",
)

var fillerPhrases = newLexicon(
	"for a moment", "couldn't help but", "in that moment", "at that moment",
	"all of a sudden", "the fact that", "in order to", "began to",
	"started to", "seemed to", "for some reason", "at the end of the day",
)

// scanVagueWords is the broader list used by the flag engine.
var scanVagueWords = newLexicon(
	"somehow", "something", "somewhat", "somewhere", "some kind of",
	"strange", "strangely", "weird", "odd", "very", "really", "quite",
	"rather", "kind of", "sort of", "a bit", "a little", "stuff", "things",
	"certain", "various", "seemingly", "perhaps", "maybe", "in a way",
	"indescribable", "unspeakable", "ineffable", "inexplicable",
	"indefinable", "beyond words",
)

var bannedCliches = []string{
	"time stood still",
	"heart skipped a beat",
	"heart pounded in her chest",
	"heart pounded in his chest",
	"a chill ran down her spine",
	"a chill ran down his spine",
	"shivers down her spine",
	"shivers down his spine",
	"let out a breath she didn't know she was holding",
	"let out a breath he didn't know he was holding",
	"breath she didn't know she was holding",
	"breath he didn't know he was holding",
	"the silence was deafening",
	"deafening silence",
	"in the nick of time",
	"at the end of the day",
	"only time will tell",
	"little did she know",
	"little did he know",
	"dead as a doornail",
	"avoid it like the plague",
	"crystal clear",
	"calm before the storm",
	"every fiber of her being",
	"every fiber of his being",
	"the world fell away",
	"eyes sparkled with mischief",
	"a wave of emotion",
	"tears streamed down her face",
	"tears streamed down his face",
}
