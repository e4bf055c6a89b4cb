package app

import (
	"errors"
	"testing"

	"github.com/thedeuce2/ProWriter/internal/pw"
)

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
		want     string
	}{
		{"json file", "note.json", `{"text": "x"}`, `{"text": "x"}`},
		{"json from stdin", "-", `{"text":"x"}`, `{"text":"x"}`},
		{"yaml file", "mara.yaml", "name: Mara\ntraits:\n  - stubborn\n  - loyal\n", `{"name":"Mara","traits":["stubborn","loyal"]}`},
		{"yml file", "mara.yml", "name: Mara\n", `{"name":"Mara"}`},
		{"yaml without extension", "-", "voice: wry\nsentence_length_target: 14\n", `{"sentence_length_target":14,"voice":"wry"}`},
		{"non-string keys", "rel.yaml", "relationships:\n  1: first\n", `{"relationships":{"1":"first"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodePayload(tt.filename, []byte(tt.data))
			if err != nil {
				t.Fatalf("DecodePayload() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("DecodePayload() = %s, want %s", got, tt.want)
			}
		})
	}

	t.Run("invalid", func(t *testing.T) {
		_, err := DecodePayload("bad.yaml", []byte("a: [unterminated"))
		if !errors.Is(err, pw.ErrValidation) {
			t.Errorf("DecodePayload() error = %v, want validation", err)
		}
	})
}
