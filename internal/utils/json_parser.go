package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrNoRecordArray is returned when a catalog payload holds no JSON array.
var ErrNoRecordArray = errors.New("no record array in payload")

// ExtractRecordArray pulls the list of property records out of a catalog
// payload. It accepts:
//   - a bare JSON array
//   - an object with a "properties" array
//   - any object, using its first array-valued member (document order)
//   - any of the above behind a BOM or a JavaScript assignment
//     (`window.PROPERTIES = [...];`)
func ExtractRecordArray(input []byte) ([]json.RawMessage, error) {
	data := bytes.TrimSpace(bytes.TrimPrefix(input, []byte("\ufeff")))
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	if data[0] != '[' && data[0] != '{' {
		extracted := extractJSONFromText(data)
		if extracted == nil {
			return nil, fmt.Errorf("failed to locate JSON in input: %s", truncateString(string(data), 100))
		}
		data = extracted
	}

	if data[0] == '[' {
		var records []json.RawMessage
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to decode record array: %w", err)
		}
		return records, nil
	}

	member, err := firstArrayMember(data)
	if err != nil {
		return nil, err
	}
	var records []json.RawMessage
	if err := json.Unmarshal(member, &records); err != nil {
		return nil, fmt.Errorf("failed to decode record array: %w", err)
	}
	return records, nil
}

// firstArrayMember walks the members of a JSON object in document order and
// returns the "properties" member if it is an array, else the first array.
func firstArrayMember(data []byte) (json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrNoRecordArray
	}

	var first json.RawMessage
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read object key: %w", err)
		}
		key, _ := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read member %q: %w", key, err)
		}
		if !isArray(value) {
			continue
		}
		if key == "properties" {
			return value, nil
		}
		if first == nil {
			first = value
		}
	}

	if first == nil {
		return nil, ErrNoRecordArray
	}
	return first, nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// extractJSONFromText finds the first JSON array or object in surrounding text
func extractJSONFromText(input []byte) []byte {
	for i, ch := range input {
		switch ch {
		case '[':
			if extracted := extractBalanced(input[i:], '[', ']'); extracted != nil {
				return extracted
			}
		case '{':
			if extracted := extractBalanced(input[i:], '{', '}'); extracted != nil {
				return extracted
			}
		}
	}
	return nil
}

// extractBalanced extracts content with balanced delimiters, ignoring
// delimiters inside JSON strings.
func extractBalanced(input []byte, open, close byte) []byte {
	depth := 0
	inString := false
	escape := false

	for i, ch := range input {
		if escape {
			escape = false
			continue
		}
		if ch == '\\' {
			escape = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return input[:i+1]
			}
		}
	}
	return nil
}

// ValidateJSON checks if a byte slice is valid JSON
func ValidateJSON(input []byte) bool {
	return json.Valid(input)
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
