package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/thedeuce2/ProWriter/internal/model"
	"github.com/thedeuce2/ProWriter/internal/pw"
	"github.com/thedeuce2/ProWriter/internal/rubric"
)

// MaxPayloadBytes bounds the encoded size of a single artifact payload.
const MaxPayloadBytes = 1 << 20

func str(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: desc}
}

func nonEmpty(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: desc, MinLength: jsonschema.Ptr(1)}
}

func oneOf(desc string, values ...string) *jsonschema.Schema {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = v
	}
	return &jsonschema.Schema{Type: "string", Description: desc, Enum: enum}
}

func strList(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "array", Description: desc, Items: &jsonschema.Schema{Type: "string"}}
}

func positive(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "integer", Description: desc, Minimum: jsonschema.Ptr(1.0)}
}

func object(desc string, required []string, props map[string]*jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Description: desc, Required: required, Properties: props}
}

func anyObject(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Description: desc}
}

func anyArray(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "array", Description: desc}
}

func modeNames() []string {
	names := make([]string, len(rubric.Modes))
	for i, m := range rubric.Modes {
		names[i] = string(m)
	}
	return names
}

// documents holds one schema per artifact type.
var documents = map[model.ArtifactType]*jsonschema.Schema{
	model.StyleProfile: object("Voice and mechanics a project's prose should follow.",
		[]string{"voice"},
		map[string]*jsonschema.Schema{
			"voice":                  nonEmpty("Description of the narrative voice."),
			"tense":                  oneOf("Narrative tense.", "past", "present", "future"),
			"pov":                    oneOf("Point of view.", "first", "second", "third_limited", "third_omniscient"),
			"banned_phrases":         strList("Phrases that must not appear."),
			"preferred_words":        strList("Words to favor."),
			"sentence_length_target": positive("Target average words per sentence."),
			"notes":                  str("Free-form notes."),
		}),
	model.CharacterSheet: object("A character's identity, voice and arc.",
		[]string{"name"},
		map[string]*jsonschema.Schema{
			"name":          nonEmpty("Character name."),
			"role":          str("Role in the story."),
			"description":   str("Physical and personal description."),
			"traits":        strList("Defining traits."),
			"voice_notes":   str("How the character speaks."),
			"relationships": anyObject("Relationships keyed by character name."),
			"arc":           str("How the character changes."),
		}),
	model.DraftDirective: object("Instructions for drafting a scene.",
		[]string{"goal"},
		map[string]*jsonschema.Schema{
			"goal":          nonEmpty("What the scene must accomplish."),
			"scene":         str("Scene or chapter identifier."),
			"pov_character": str("Point-of-view character name."),
			"beats":         strList("Ordered story beats."),
			"constraints":   strList("Hard constraints on the draft."),
			"target_words":  positive("Target length in words."),
			"style_profile": str("Name of the style profile to follow."),
		}),
	model.RevisionPlan: object("A revision checklist for one editing mode.",
		[]string{"mode", "rubric"},
		map[string]*jsonschema.Schema{
			"mode":               oneOf("Editing mode.", modeNames()...),
			"rubric":             strList("Checklist items."),
			"risks_to_avoid":     strList("Patterns to avoid."),
			"recommended_passes": strList("Suggested revision passes."),
			"notes":              str("Free-form notes."),
		}),
	model.QualityReport: object("Deterministic diagnostics for one text.",
		[]string{"metrics", "counts"},
		map[string]*jsonschema.Schema{
			"source":        str("Where the text came from."),
			"metrics":       anyObject("Text metrics."),
			"counts":        anyObject("Flag counts by kind."),
			"flags":         anyArray("Detected flags."),
			"suggested_ops": anyArray("Proposed edit operations."),
			"cleaned_text":  str("Text with suggested ops applied."),
			"applied":       anyArray("Edit operations that were applied."),
			"skipped":       anyArray("Edit operations that were skipped."),
		}),
	model.FreeformNote: object("An unstructured note.",
		[]string{"text"},
		map[string]*jsonschema.Schema{
			"text": nonEmpty("Note body."),
			"tags": strList("Tags for lookup."),
		}),
}

// Document returns the JSON Schema document for t.
func Document(t model.ArtifactType) ([]byte, error) {
	s, ok := documents[t]
	if !ok {
		return nil, fmt.Errorf("no schema for artifact type %q", t)
	}
	return json.MarshalIndent(s, "", "  ")
}

// Validator checks payloads against the per-type schemas.
type Validator struct {
	resolved map[model.ArtifactType]*jsonschema.Resolved
}

// NewValidator resolves every artifact type's schema.
func NewValidator() (*Validator, error) {
	v := &Validator{resolved: make(map[model.ArtifactType]*jsonschema.Resolved, len(documents))}
	for _, t := range model.ArtifactTypes {
		doc, ok := documents[t]
		if !ok {
			return nil, fmt.Errorf("no schema for artifact type %q", t)
		}
		rs, err := doc.Resolve(nil)
		if err != nil {
			return nil, fmt.Errorf("resolving %s schema: %w", t, err)
		}
		v.resolved[t] = rs
	}
	return v, nil
}

// Validate checks payload against the schema for artifactType and returns it
// re-encoded in canonical form (compact, object keys sorted).
func (v *Validator) Validate(artifactType model.ArtifactType, payload json.RawMessage) (json.RawMessage, error) {
	rs, ok := v.resolved[artifactType]
	if !ok {
		return nil, pw.ValidationError(nil, "unknown artifact type %q", artifactType)
	}
	if len(payload) > MaxPayloadBytes {
		return nil, pw.ValidationError(nil, "%s payload is %d bytes, limit is %d", artifactType, len(payload), MaxPayloadBytes)
	}

	// Numbers are kept as json.Number in the stored copy so large integers
	// and long decimals survive re-encoding. The schema checks a plain decode,
	// since it types json.Number as a string.
	var exact any
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&exact); err != nil {
		return nil, pw.ValidationError(err, "%s payload is not valid JSON", artifactType)
	}
	if dec.More() {
		return nil, pw.ValidationError(nil, "%s payload has trailing data", artifactType)
	}

	var instance any
	if err := json.Unmarshal(payload, &instance); err != nil {
		return nil, pw.ValidationError(err, "%s payload is not valid JSON", artifactType)
	}
	if err := rs.Validate(instance); err != nil {
		return nil, pw.ValidationError(err, "%s payload does not match schema", artifactType)
	}

	canonical, err := json.Marshal(exact)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return canonical, nil
}

var _ pw.Validator = (*Validator)(nil)
