package prose

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	wordPattern       = regexp.MustCompile(`[A-Za-z0-9']+`)
	breakPattern      = regexp.MustCompile(`[.!?]\s+`)
	quotedPattern     = regexp.MustCompile(`"[^"]*"`)
	adverbPattern     = regexp.MustCompile(`(?i)\b\w+ly\b`)
	metaphorPattern   = regexp.MustCompile(`(?i)\b(?:like|as if|as though)\b`)
	wasAPattern       = regexp.MustCompile(`(?i)\bwas a\b`)
	paragraphSplitter = regexp.MustCompile(`\n[ \t\r]*\n`)
)

// Analyze computes the metrics bundle for text.
// It is a pure function: identical input always yields identical output.
func Analyze(text string) Metrics {
	words := Words(text)
	sentences := Sentences(text)

	m := Metrics{
		CharCount:      utf8.RuneCountInString(text),
		WordCount:      len(words),
		SentenceCount:  len(sentences),
		ParagraphCount: countParagraphs(text),
	}

	distinct := make(map[string]struct{}, len(words))
	for _, w := range words {
		m.SyllableCount += Syllables(w)
		distinct[strings.ToLower(w)] = struct{}{}
	}

	if m.SentenceCount > 0 {
		m.AvgSentenceWords = float64(m.WordCount) / float64(m.SentenceCount)
	}
	if m.WordCount > 0 {
		m.AvgWordSyllables = float64(m.SyllableCount) / float64(m.WordCount)
		m.LexicalDiversity = float64(len(distinct)) / float64(m.WordCount)
	}
	m.Readability = fleschReadingEase(m.WordCount, m.SentenceCount, m.SyllableCount)
	m.DialogueRatio = dialogueRatio(text, m.CharCount)
	m.AdverbLikeCount = len(adverbPattern.FindAllStringIndex(text, -1))
	m.VagueWordCount = vagueWords.count(text)
	m.FillerPhraseCount = fillerPhrases.count(text)
	m.MetaphorMarkerCount = len(metaphorPattern.FindAllStringIndex(text, -1)) +
		len(wasAPattern.FindAllStringIndex(text, -1))

	return m
}

// Words returns the word tokens of text: maximal runs of [A-Za-z0-9'].
func Words(text string) []string {
	return wordPattern.FindAllString(text, -1)
}

// Sentences splits text conservatively. A break happens only after '.', '!' or '?'
// followed by whitespace and then an uppercase letter, a digit or an opening quote.
func Sentences(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	var sentences []string
	start := 0
	for _, loc := range breakPattern.FindAllStringIndex(trimmed, -1) {
		next, _ := utf8.DecodeRuneInString(trimmed[loc[1]:])
		if !opensSentence(next) {
			continue
		}
		if s := strings.TrimSpace(trimmed[start : loc[0]+1]); s != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(trimmed[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func opensSentence(r rune) bool {
	switch r {
	case '"', '\'', '“', '‘':
		return true
	}
	return unicode.IsUpper(r) || unicode.IsDigit(r)
}

// Syllables estimates the syllable count of a single word token.
// Any nonempty token counts as at least one syllable.
func Syllables(word string) int {
	if word == "" {
		return 0
	}

	var b strings.Builder
	for _, r := range strings.ToLower(word) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	letters := b.String()

	count := 0
	prevVowel := false
	for i := 0; i < len(letters); i++ {
		v := isVowel(letters[i])
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}
	// A final "e" is taken as silent whenever another vowel group remains.
	if count > 1 && strings.HasSuffix(letters, "e") {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

func fleschReadingEase(words, sentences, syllables int) *float64 {
	if words == 0 {
		return nil
	}
	sentenceDenom := float64(max(sentences, 1))
	wordDenom := float64(max(words, 1))
	score := 206.835 - 1.015*(float64(words)/sentenceDenom) - 84.6*(float64(syllables)/wordDenom)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return nil
	}
	return &score
}

func dialogueRatio(text string, total int) float64 {
	if total == 0 {
		return 0
	}
	quoted := 0
	for _, q := range quotedPattern.FindAllString(text, -1) {
		quoted += utf8.RuneCountInString(q)
	}
	ratio := float64(quoted) / float64(total)
	return math.Min(math.Max(ratio, 0), 1)
}

func countParagraphs(text string) int {
	n := 0
	for _, p := range paragraphSplitter.Split(text, -1) {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}
