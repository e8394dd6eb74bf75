package utils

import (
	"encoding/json"
	"testing"
)

func TestExtractRecordArray(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantIDs []string
		wantErr bool
	}{
		{
			name:    "Bare array",
			input:   `[{"id": "P1"}, {"id": "P2"}]`,
			wantIDs: []string{"P1", "P2"},
		},
		{
			name:    "Properties wrapper",
			input:   `{"updated": "2024-01-01", "properties": [{"id": "P3"}]}`,
			wantIDs: []string{"P3"},
		},
		{
			name:    "Properties wins over earlier array",
			input:   `{"tags": [{"id": "T"}], "properties": [{"id": "P4"}]}`,
			wantIDs: []string{"P4"},
		},
		{
			name:    "First array member in document order",
			input:   `{"meta": {"n": 2}, "items": [{"id": "A"}], "other": [{"id": "B"}]}`,
			wantIDs: []string{"A"},
		},
		{
			name:    "BOM prefix",
			input:   "\ufeff" + `[{"id": "P5"}]`,
			wantIDs: []string{"P5"},
		},
		{
			name:    "JavaScript assignment",
			input:   `window.PROPERTIES = [{"id": "P6", "title": "Casa [remodelada]"}];`,
			wantIDs: []string{"P6"},
		},
		{
			name:    "Object without arrays",
			input:   `{"a": 1}`,
			wantErr: true,
		},
		{
			name:    "Empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:    "Invalid JSON",
			input:   "not json at all",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ExtractRecordArray([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractRecordArray() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(records) != len(tt.wantIDs) {
				t.Fatalf("ExtractRecordArray() got %d records, want %d", len(records), len(tt.wantIDs))
			}
			for i, raw := range records {
				var rec struct {
					ID string `json:"id"`
				}
				if err := json.Unmarshal(raw, &rec); err != nil {
					t.Fatalf("record %d is not valid JSON: %v", i, err)
				}
				if rec.ID != tt.wantIDs[i] {
					t.Errorf("record %d id = %q, want %q", i, rec.ID, tt.wantIDs[i])
				}
			}
		})
	}
}

func TestExtractBalanced(t *testing.T) {
	tests := []struct {
		name  string
		input string
		open  byte
		close byte
		want  string
	}{
		{
			name:  "Simple object",
			input: `{"a": 1} trailing`,
			open:  '{',
			close: '}',
			want:  `{"a": 1}`,
		},
		{
			name:  "Nested objects",
			input: `{"a": {"b": 2}}`,
			open:  '{',
			close: '}',
			want:  `{"a": {"b": 2}}`,
		},
		{
			name:  "Object with string containing braces",
			input: `{"text": "Hello {world}"}`,
			open:  '{',
			close: '}',
			want:  `{"text": "Hello {world}"}`,
		},
		{
			name:  "Array",
			input: `[1, 2, 3];`,
			open:  '[',
			close: ']',
			want:  `[1, 2, 3]`,
		},
		{
			name:  "Unbalanced",
			input: `[1, 2`,
			open:  '[',
			close: ']',
			want:  ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(extractBalanced([]byte(tt.input), tt.open, tt.close))
			if got != tt.want {
				t.Errorf("extractBalanced() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "Valid object", input: `{"test": true}`, want: true},
		{name: "Valid array", input: `[1, 2, 3]`, want: true},
		{name: "Invalid JSON", input: `{test: true}`, want: false},
		{name: "Empty string", input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateJSON([]byte(tt.input)); got != tt.want {
				t.Errorf("ValidateJSON() = %v, want %v", got, tt.want)
			}
		})
	}
}
