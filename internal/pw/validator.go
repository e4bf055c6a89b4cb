package pw

import (
	"encoding/json"

	"github.com/thedeuce2/ProWriter/internal/model"
)

// Validator checks an artifact payload against the schema for its type.
// It returns the payload in canonical JSON form, or a ValidationError.
type Validator interface {
	Validate(artifactType model.ArtifactType, payload json.RawMessage) (json.RawMessage, error)
}
