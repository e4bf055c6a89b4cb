package prose

// FlagKind is the taxonomy of patterns the scanner reports.
type FlagKind string

const (
	Personification FlagKind = "personification"
	VagueLanguage   FlagKind = "vague_language"
	AbstractSimile  FlagKind = "abstract_simile"
	Cliche          FlagKind = "cliche"
	RhetoricalFrame FlagKind = "rhetorical_frame"
	Filler          FlagKind = "filler"
)

// Severity ranks how strongly a flag should be acted on.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Span is a half-open byte range [Start, End) into the text it was taken from.
// Snippet is the substring at capture time and is for display only.
type Span struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Snippet string `json:"snippet"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

func newSpan(text string, start, end int) Span {
	return Span{Start: start, End: end, Snippet: text[start:end]}
}

// Flag groups every span one detector found in a single scan.
type Flag struct {
	Kind     FlagKind `json:"kind"`
	Severity Severity `json:"severity"`
	Detector string   `json:"detector"`
	Message  string   `json:"message"`
	Spans    []Span   `json:"spans"`
}

// OpKind is the transformation an EditOp performs.
type OpKind string

const (
	OpDelete  OpKind = "delete"
	OpReplace OpKind = "replace"
)

// EditOp is a proposed rewrite of one span of the original text.
// Replacement is empty for deletes.
type EditOp struct {
	Op          OpKind   `json:"op"`
	Span        Span     `json:"span"`
	Replacement string   `json:"replacement,omitempty"`
	Kind        FlagKind `json:"kind"`
	Note        string   `json:"note"`
}

// Counts holds span totals per flag kind.
type Counts struct {
	Personification int `json:"personification"`
	VagueLanguage   int `json:"vague_language"`
	AbstractSimile  int `json:"abstract_simile"`
	Cliche          int `json:"cliche"`
	RhetoricalFrame int `json:"rhetorical_frame"`
	Filler          int `json:"filler"`
}

func (c *Counts) add(kind FlagKind, n int) {
	switch kind {
	case Personification:
		c.Personification += n
	case VagueLanguage:
		c.VagueLanguage += n
	case AbstractSimile:
		c.AbstractSimile += n
	case Cliche:
		c.Cliche += n
	case RhetoricalFrame:
		c.RhetoricalFrame += n
	case Filler:
		c.Filler += n
	}
}

// Of returns the count recorded for kind.
func (c Counts) Of(kind FlagKind) int {
	switch kind {
	case Personification:
		return c.Personification
	case VagueLanguage:
		return c.VagueLanguage
	case AbstractSimile:
		return c.AbstractSimile
	case Cliche:
		return c.Cliche
	case RhetoricalFrame:
		return c.RhetoricalFrame
	case Filler:
		return c.Filler
	}
	return 0
}

// Total returns the number of spans across all kinds.
func (c Counts) Total() int {
	return c.Personification + c.VagueLanguage + c.AbstractSimile + c.Cliche + c.RhetoricalFrame + c.Filler
}

// ScanResult is the output of Scan.
type ScanResult struct {
	Counts       Counts   `json:"counts"`
	Flags        []Flag   `json:"flags"`
	SuggestedOps []EditOp `json:"suggested_ops"`
}

// Metrics is the output of Analyze.
// Readability is nil when the Flesch score is undefined.
type Metrics struct {
	CharCount           int      `json:"char_count"`
	WordCount           int      `json:"word_count"`
	SentenceCount       int      `json:"sentence_count"`
	ParagraphCount      int      `json:"paragraph_count"`
	SyllableCount       int      `json:"syllable_count"`
	AvgSentenceWords    float64  `json:"avg_sentence_words"`
	AvgWordSyllables    float64  `json:"avg_word_syllables"`
	Readability         *float64 `json:"readability"`
	LexicalDiversity    float64  `json:"lexical_diversity"`
	DialogueRatio       float64  `json:"dialogue_ratio"`
	AdverbLikeCount     int      `json:"adverb_like_count"`
	VagueWordCount      int      `json:"vague_word_count"`
	FillerPhraseCount   int      `json:"filler_phrase_count"`
	MetaphorMarkerCount int      `json:"metaphor_marker_count"`
}
