package prose

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// detector identifies one member of the fixed scan battery.
type detector int

const (
	rhetoricalFlourish detector = iota
	personifiedAction
	anthropomorphicSound
	whisperIdiom
	vagueLexicon
	abstractSimile
	moralizingTagline
	bannedCliche
	fillerWord
)

// battery is the detector run order. Flags and ops follow it.
var battery = []detector{
	rhetoricalFlourish,
	personifiedAction,
	anthropomorphicSound,
	whisperIdiom,
	vagueLexicon,
	abstractSimile,
	moralizingTagline,
	bannedCliche,
	fillerWord,
}

type detectorInfo struct {
	name     string
	kind     FlagKind
	severity Severity
	message  string
	limit    int
}

var detectorTable = map[detector]detectorInfo{
	rhetoricalFlourish: {
		name: "rhetorical_flourish", kind: RhetoricalFrame, severity: SeverityWarn, limit: 40,
		message: "Contrastive rhetorical frame; state the point directly.",
	},
	personifiedAction: {
		name: "personified_action", kind: Personification, severity: SeverityWarn, limit: 60,
		message: "Inanimate subject performs a human action.",
	},
	anthropomorphicSound: {
		name: "anthropomorphic_sound", kind: Personification, severity: SeverityInfo, limit: 40,
		message: "Sound described with a human vocal noun.",
	},
	whisperIdiom: {
		name: "whisper_of", kind: Personification, severity: SeverityInfo, limit: 40,
		message: `"Whisper of" idiom; prefer a concrete word.`,
	},
	vagueLexicon: {
		name: "vague_words", kind: VagueLanguage, severity: SeverityInfo, limit: 80,
		message: "Vague or hedging word; be specific.",
	},
	abstractSimile: {
		name: "abstract_simile", kind: AbstractSimile, severity: SeverityWarn, limit: 40,
		message: "Simile compares to an abstraction; compare to something concrete.",
	},
	moralizingTagline: {
		name: "moralizing_tagline", kind: RhetoricalFrame, severity: SeverityWarn, limit: 40,
		message: "Moralizing tagline addressed to the reader.",
	},
	bannedCliche: {
		name: "cliche", kind: Cliche, severity: SeverityError, limit: 60,
		message: "Stock phrase; cut or replace.",
	},
	fillerWord: {
		name: "filler_words", kind: Filler, severity: SeverityInfo, limit: 80,
		message: "Filler word adds no meaning.",
	},
}

func (d detector) info() detectorInfo {
	return detectorTable[d]
}

// hit is one detector match: the flagged span and an optional proposed edit.
type hit struct {
	start, end int
	op         *EditOp
}

// detect runs d over text and returns at most d.info().limit hits in text order.
func (d detector) detect(text string) []hit {
	var hits []hit
	switch d {
	case rhetoricalFlourish:
		hits = rangesToHits(collect(text, rhetoricalPatterns...))
	case personifiedAction:
		hits = detectPersonifiedAction(text)
	case anthropomorphicSound:
		hits = detectSoundNouns(text)
	case whisperIdiom:
		hits = detectWhisperIdiom(text)
	case vagueLexicon:
		hits = rangesToHits(scanVagueWords.find(text))
	case abstractSimile:
		hits = rangesToHits(collect(text, abstractSimilePattern))
	case moralizingTagline:
		hits = rangesToHits(collect(text, taglinePattern))
	case bannedCliche:
		hits = detectCliches(text)
	case fillerWord:
		hits = detectFillers(text)
	}
	if limit := d.info().limit; len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

const (
	apos      = `['’]`
	phraseGap = `[^.!?;—–]{1,60}?`
)

var rhetoricalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:didn` + apos + `t|did not|doesn` + apos + `t|does not|wasn` + apos + `t|was not|isn` + apos + `t|is not|weren` + apos + `t|were not)\s+just\s+` +
		phraseGap + `\s*(?:—|–|--|;|,)\s*(?:it|he|she|they|we|this|that)\b`),
	regexp.MustCompile(`(?i)\bnot\s+(?:just|only|merely)\s+` + phraseGap + `,?\s+but\s+(?:also\s+)?\w+`),
	regexp.MustCompile(`(?i)\bit\s+wasn` + apos + `t\s+` + phraseGap + `(?:;|—|–|--|,|\.)\s*it\s+was\b`),
}

var humanIntentForms = []string{
	"whispered", "whispers", "begged", "begs", "sighed", "sighs", "wept",
	"weeps", "screamed", "screams", "moaned", "moans", "groaned", "groans",
	"sang", "sings", "murmured", "murmurs", "pleaded", "pleads", "laughed",
	"laughs", "sobbed", "sobs", "complained", "complains", "beckoned",
	"beckons", "mourned", "mourns", "protested", "protests", "yearned",
	"yearns", "sulked", "sulks", "brooded", "broods",
}

var personifiedActionPattern = regexp.MustCompile(
	`(?i)\b(?:the|a|an)\s+((?:[a-z'’-]+\s+){0,2}[a-z'’-]+)\s+(?:` +
		strings.Join(humanIntentForms, "|") + `)\b`)

var humanNouns = map[string]bool{}

func init() {
	for _, n := range []string{
		"man", "men", "woman", "women", "boy", "boys", "girl", "girls",
		"child", "children", "kid", "kids", "baby", "mother", "father",
		"mom", "dad", "brother", "sister", "son", "daughter", "wife",
		"husband", "king", "queen", "prince", "princess", "lord", "lady",
		"soldier", "soldiers", "guard", "guards", "doctor", "nurse",
		"teacher", "priest", "stranger", "people", "person", "friend",
		"captain", "officer", "driver", "waiter", "waitress", "clerk",
		"student", "detective", "witness", "thief", "boss", "servant",
		"maid", "widow", "crowd", "audience", "singer", "girlfriend",
		"boyfriend", "mourner", "mourners", "beggar", "baker", "farmer",
	} {
		humanNouns[n] = true
	}
}

func detectPersonifiedAction(text string) []hit {
	var hits []hit
	for _, m := range personifiedActionPattern.FindAllStringSubmatchIndex(text, -1) {
		if hasHumanSubject(text[m[2]:m[3]]) {
			continue
		}
		hits = append(hits, hit{start: m[0], end: m[1]})
	}
	return hits
}

func hasHumanSubject(words string) bool {
	for _, w := range strings.Fields(strings.ToLower(words)) {
		if humanNouns[strings.Trim(w, "'’-")] {
			return true
		}
	}
	return false
}

const soundNouns = `(sigh|moan|groan|whimper|wail|sob|murmur|lament|keen|howl)`

var (
	adjectiveSoundPattern = regexp.MustCompile(
		`(?i)\b(?:mournful|plaintive|angry|sad|weary|tired|lonely|anguished|sorrowful|melancholy|wistful|desperate|bitter|gentle|soft|low|long|deep|heavy)\s+` +
			soundNouns + `(?:s|es)?\b`)
	articleSoundPattern = regexp.MustCompile(
		`(?i)\b(?:the|a)\s+` + soundNouns + `\s+of\s+(?:the\s+)?(?:wind|house|sea|ocean|trees?|engine|pipes?|floorboards?|door|walls?|city|river|storm|rain|branches|timbers?|ship|hull|machine|forest|leaves)\b`)
)

func detectSoundNouns(text string) []hit {
	byStart := map[int]hit{}
	var ranges [][2]int
	for _, p := range []*regexp.Regexp{adjectiveSoundPattern, articleSoundPattern} {
		for _, m := range p.FindAllStringSubmatchIndex(text, -1) {
			ranges = append(ranges, [2]int{m[0], m[1]})
			op := replaceOp(text, m[2], m[3], "sound", Personification, "Replace the vocal noun with a neutral one.")
			byStart[m[0]] = hit{start: m[0], end: m[1], op: &op}
		}
	}
	var hits []hit
	for _, r := range dropOverlaps(ranges) {
		h := byStart[r[0]]
		h.end = r[1]
		hits = append(hits, h)
	}
	return hits
}

var whisperIdiomPattern = regexp.MustCompile(`(?i)\b(whisper)(s?)\s+of\s+[a-z'’-]+`)

func detectWhisperIdiom(text string) []hit {
	var hits []hit
	for _, m := range whisperIdiomPattern.FindAllStringSubmatchIndex(text, -1) {
		op := replaceOp(text, m[2], m[3], "trace", Personification, `Replace "whisper" with a concrete noun.`)
		hits = append(hits, hit{start: m[0], end: m[1], op: &op})
	}
	return hits
}

var abstractSimilePattern = regexp.MustCompile(
	`(?i)\blike\s+(?:(?:a|an|the|some)\s+)?(?:[a-z'’-]+\s+)?(?:memory|memories|dream|dreams|promise|promises|secret|secrets|prayer|prayers|regret|regrets|hope|hopes|grief|sorrow|longing|thought|thoughts|fate|destiny|truth|lie|lies|confession|apology|eternity|sin|sins|nostalgia|loss|despair|forgiveness|guilt|shame)\b`)

var taglinePattern = regexp.MustCompile(`(?i)\benough\s+to\s+(?:damn|save|ruin|haunt)\s+you\b`)

var clichePatterns = func() []*regexp.Regexp {
	ps := make([]*regexp.Regexp, 0, len(bannedCliches))
	for _, c := range bannedCliches {
		ps = append(ps, regexp.MustCompile(phrasePattern(c, false)))
	}
	return ps
}()

func detectCliches(text string) []hit {
	var hits []hit
	for _, r := range collect(text, clichePatterns...) {
		op := EditOp{
			Op:   OpDelete,
			Span: newSpan(text, r[0], r[1]),
			Kind: Cliche,
			Note: "Delete the stock phrase and rewrite the beat in your own words.",
		}
		hits = append(hits, hit{start: r[0], end: r[1], op: &op})
	}
	return hits
}

var fillerPattern = regexp.MustCompile(`(?i)\b(?:very|really|just|somehow)\b`)

// detectFillers proposes deleting each filler word along with one adjacent
// space so the remaining words stay single-spaced.
func detectFillers(text string) []hit {
	var hits []hit
	for _, loc := range fillerPattern.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		switch {
		case end < len(text) && text[end] == ' ':
			end++
		case start > 0 && text[start-1] == ' ':
			start--
		}
		op := EditOp{
			Op:   OpDelete,
			Span: newSpan(text, start, end),
			Kind: Filler,
			Note: "Delete the filler word.",
		}
		hits = append(hits, hit{start: loc[0], end: loc[1], op: &op})
	}
	return hits
}

func collect(text string, patterns ...*regexp.Regexp) [][2]int {
	var ranges [][2]int
	for _, p := range patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			ranges = append(ranges, [2]int{loc[0], loc[1]})
		}
	}
	return dropOverlaps(ranges)
}

func rangesToHits(ranges [][2]int) []hit {
	hits := make([]hit, 0, len(ranges))
	for _, r := range ranges {
		hits = append(hits, hit{start: r[0], end: r[1]})
	}
	return hits
}

func replaceOp(text string, start, end int, replacement string, kind FlagKind, note string) EditOp {
	return EditOp{
		Op:          OpReplace,
		Span:        newSpan(text, start, end),
		Replacement: matchCase(replacement, text[start:end]),
		Kind:        kind,
		Note:        note,
	}
}

// matchCase shapes replacement to the capitalization of original:
// ALL CAPS, Capitalized, or left as is.
func matchCase(replacement, original string) string {
	if original == "" || replacement == "" {
		return replacement
	}
	if utf8.RuneCountInString(original) > 1 && original == strings.ToUpper(original) && original != strings.ToLower(original) {
		return strings.ToUpper(replacement)
	}
	first, _ := utf8.DecodeRuneInString(original)
	if unicode.IsUpper(first) {
		r, size := utf8.DecodeRuneInString(replacement)
		return string(unicode.ToUpper(r)) + replacement[size:]
	}
	return replacement
}
