package app

import "encoding/json"

// Operation statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Operation tracks a command that may mutate the artifact store.
// Operations are created in memory with ID=0. Only mutating commands
// persist them, which gives them an auto-increment ID from the database.
// That ID becomes the version of the snapshot archived on Close.
type Operation struct {
	ID         int64
	Operation  string
	Parameters string
	Status     string
}

// NewOperation creates a new in-memory operation.
func NewOperation(operation string) *Operation {
	return &Operation{
		Operation: operation,
		Status:    StatusSuccess,
	}
}

// Persisted returns true if this operation has been saved to the database.
func (op *Operation) Persisted() bool {
	return op.ID != 0
}

// SetParameters records params as JSON. Unencodable params are stored as "{}".
func (op *Operation) SetParameters(params map[string]any) {
	if len(params) == 0 {
		op.Parameters = "{}"
		return
	}
	data, err := json.Marshal(params)
	if err != nil {
		op.Parameters = "{}"
		return
	}
	op.Parameters = string(data)
}

// Observe marks the operation failed when err is non-nil and returns err.
func (op *Operation) Observe(err error) error {
	if err != nil {
		op.Status = StatusError
	}
	return err
}
