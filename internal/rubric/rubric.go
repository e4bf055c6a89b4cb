package rubric

import (
	"fmt"
	"strings"
)

// Mode is an editing focus a revision plan is built for.
type Mode string

const (
	Humanize        Mode = "humanize"
	Marketability   Mode = "marketability"
	Tighten         Mode = "tighten"
	VoiceMatch      Mode = "voice_match"
	Clarity         Mode = "clarity"
	DialoguePunchup Mode = "dialogue_punchup"
	Pacing          Mode = "pacing"
)

// Modes lists every supported mode.
var Modes = []Mode{Humanize, Marketability, Tighten, VoiceMatch, Clarity, DialoguePunchup, Pacing}

// ParseMode validates s as a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := extensions[m]; ok {
		return m, nil
	}
	names := make([]string, len(Modes))
	for i, mode := range Modes {
		names[i] = string(mode)
	}
	return "", fmt.Errorf("unknown mode %q (valid: %s)", s, strings.Join(names, ", "))
}

// Plan is a revision checklist for one mode.
type Plan struct {
	Mode              Mode     `json:"mode"`
	Rubric            []string `json:"rubric"`
	RisksToAvoid      []string `json:"risks_to_avoid"`
	RecommendedPasses []string `json:"recommended_passes"`
}

type extension struct {
	rubric []string
	risks  []string
	passes []string
}

var (
	baseRubric = []string{
		"Every sentence earns its place; cut anything that repeats an earlier beat.",
		"Concrete nouns and active verbs carry the scene.",
		"Point of view and tense stay consistent within the scene.",
		"Each paragraph moves character, conflict or setting forward.",
	}
	baseRisks = []string{
		"Stock phrases and clichés.",
		"Inanimate objects performing human actions.",
		"Hedging and vague qualifiers.",
	}
	basePasses = []string{
		"Run scan and resolve every error-level flag.",
		"Read the passage aloud once before finishing.",
	}
)

var extensions = map[Mode]extension{
	Humanize: {
		rubric: []string{
			"Sentence length varies; no run of three sentences with the same shape.",
			"Specific sensory detail replaces general description.",
			"Characters react in ways only they would.",
		},
		risks: []string{
			"Contrastive frames such as \"not just X, but Y\".",
			"Similes that compare to abstractions.",
			"Moralizing taglines aimed at the reader.",
		},
		passes: []string{
			"Rewrite every rhetorical_frame flag as a plain statement.",
			"Replace abstract similes with a physical image or cut them.",
		},
	},
	Marketability: {
		rubric: []string{
			"The opening line raises a question the reader wants answered.",
			"Stakes are clear by the end of the first page.",
			"Genre expectations are met in the first scene.",
		},
		risks: []string{
			"Slow openings built on backstory.",
			"Protagonists without a visible want.",
		},
		passes: []string{
			"Check the first paragraph for a hook.",
			"Name the protagonist's goal in one sentence and confirm the text supports it.",
		},
	},
	Tighten: {
		rubric: []string{
			"No filler words or phrases survive without a reason.",
			"Average sentence length sits close to the style profile target.",
			"Dialogue tags are plain and sparse.",
		},
		risks: []string{
			"Filler such as very, really, just and somehow.",
			"Stacked adverbs and qualifiers.",
		},
		passes: []string{
			"Apply suggested filler deletions and reread each changed sentence.",
			"Cut ten percent of the word count.",
		},
	},
	VoiceMatch: {
		rubric: []string{
			"Diction matches the style profile's voice description.",
			"Banned phrases from the style profile are absent.",
			"Sentence rhythm matches the reference passages.",
		},
		risks: []string{
			"Drift into a generic narrative register.",
			"Vocabulary the point-of-view character would not use.",
		},
		passes: []string{
			"Compare word choices against the style profile's preferred words.",
			"Read the passage next to a reference passage.",
		},
	},
	Clarity: {
		rubric: []string{
			"Every pronoun has an obvious antecedent.",
			"Spatial blocking is clear at every change of position.",
			"Each sentence makes one main claim.",
		},
		risks: []string{
			"Vague language standing in for a specific detail.",
			"Long sentences with nested clauses.",
		},
		passes: []string{
			"Resolve every vague_language flag with a specific word.",
			"Split sentences over the style profile's length target.",
		},
	},
	DialoguePunchup: {
		rubric: []string{
			"Each line of dialogue does at least one job: reveal, conceal or escalate.",
			"Characters speak past each other rather than explaining.",
			"Subtext carries the emotion instead of stated feelings.",
		},
		risks: []string{
			"Characters telling each other what both already know.",
			"Adverb-laden dialogue tags.",
		},
		passes: []string{
			"Cut the first and last line of every exchange and see if it still works.",
			"Replace stated emotions with action beats.",
		},
	},
	Pacing: {
		rubric: []string{
			"Scene length matches its importance to the plot.",
			"Action sequences use short sentences and paragraphs.",
			"Reflective passages end on a turn that pulls the reader forward.",
		},
		risks: []string{
			"Summary where a scene is needed.",
			"Repeated beats that stall momentum.",
		},
		passes: []string{
			"Mark each paragraph as scene or summary and check the balance.",
			"Check sentence length in action passages against the readability score.",
		},
	},
}

// Synthesize returns the fixed plan for mode: the base rubric followed by
// the mode's extension. The returned slices are fresh copies.
func Synthesize(mode Mode) (Plan, error) {
	ext, ok := extensions[mode]
	if !ok {
		return Plan{}, fmt.Errorf("unknown mode %q", mode)
	}
	return Plan{
		Mode:              mode,
		Rubric:            concat(baseRubric, ext.rubric),
		RisksToAvoid:      concat(baseRisks, ext.risks),
		RecommendedPasses: concat(basePasses, ext.passes),
	}, nil
}

func concat(base, ext []string) []string {
	out := make([]string, 0, len(base)+len(ext))
	out = append(out, base...)
	return append(out, ext...)
}
