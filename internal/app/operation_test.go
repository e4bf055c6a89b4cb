package app

import (
	"errors"
	"testing"
)

func TestNewOperation(t *testing.T) {
	op := NewOperation("artifact put")

	if op.Operation != "artifact put" {
		t.Errorf("Operation = %q, want %q", op.Operation, "artifact put")
	}
	if op.Status != StatusSuccess {
		t.Errorf("Status = %q, want %q", op.Status, StatusSuccess)
	}
	if op.Persisted() {
		t.Error("Persisted() = true for a new operation")
	}
}

func TestOperation_Persisted(t *testing.T) {
	tests := []struct {
		name string
		id   int64
		want bool
	}{
		{name: "not persisted when ID is 0", id: 0, want: false},
		{name: "persisted when ID is positive", id: 1, want: true},
		{name: "persisted when ID is large", id: 99999, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := &Operation{ID: tt.id}
			if got := op.Persisted(); got != tt.want {
				t.Errorf("Persisted() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOperation_SetParameters(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		want   string
	}{
		{"nil", nil, "{}"},
		{"sorted keys", map[string]any{"project": "novel", "name": "ideas"}, `{"name":"ideas","project":"novel"}`},
		{"unencodable", map[string]any{"ch": make(chan int)}, "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := NewOperation("x")
			op.SetParameters(tt.params)
			if op.Parameters != tt.want {
				t.Errorf("Parameters = %q, want %q", op.Parameters, tt.want)
			}
		})
	}
}

func TestOperation_Observe(t *testing.T) {
	op := NewOperation("scan")

	if err := op.Observe(nil); err != nil || op.Status != StatusSuccess {
		t.Fatalf("Observe(nil) = %v, status %q", err, op.Status)
	}

	boom := errors.New("boom")
	if err := op.Observe(boom); err != boom {
		t.Errorf("Observe() = %v, want %v", err, boom)
	}
	if op.Status != StatusError {
		t.Errorf("Status = %q, want %q", op.Status, StatusError)
	}

	// A later success does not clear the failure.
	op.Observe(nil)
	if op.Status != StatusError {
		t.Errorf("Status after success = %q, want %q", op.Status, StatusError)
	}
}
