package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/model"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"
)

// recordSchema only insists on what the index cannot live without: a non-empty id.
// Everything else is optional and may be a number or a numeric string.
const recordSchema = `{
  "type": "object",
  "required": ["id"],
  "properties": {
    "id": {
      "oneOf": [
        {"type": "string", "pattern": "\\S"},
        {"type": "number"}
      ]
    },
    "title":        {"type": ["string", "number", "null"]},
    "city":         {"type": ["string", "number", "null"]},
    "neighborhood": {"type": ["string", "number", "null"]},
    "type":         {"type": ["string", "number", "null"]},
    "price":        {"type": ["number", "string", "null"]},
    "beds":         {"type": ["number", "string", "null"]},
    "baths":        {"type": ["number", "string", "null"]},
    "sqm":          {"type": ["number", "string", "null"]},
    "features":     {"type": ["array", "null"]}
  }
}`

// Validator checks catalog records against the record schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the record schema.
func NewValidator() (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(recordSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile record schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate returns an error describing every schema violation of one record.
func (v *Validator) Validate(record []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(record))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.Field()+": "+e.Description())
	}
	return fmt.Errorf("invalid record: %s", strings.Join(msgs, "; "))
}

// DecodeResult is the outcome of decoding a feed.
type DecodeResult struct {
	Properties []model.Property
	Skipped    int
}

// Decode extracts the record array from a feed and decodes every valid record.
// Invalid records and repeated ids are skipped and logged, never fatal.
func Decode(data []byte, v *Validator, logger *logrus.Logger) (*DecodeResult, error) {
	records, err := utils.ExtractRecordArray(data)
	if err != nil {
		return nil, fmt.Errorf("failed to extract catalog records: %w", err)
	}

	out := &DecodeResult{Properties: make([]model.Property, 0, len(records))}
	seen := make(map[string]bool, len(records))
	for i, raw := range records {
		if v != nil {
			if err := v.Validate(raw); err != nil {
				out.Skipped++
				logger.WithError(err).WithField("index", i).Warn("Skipping catalog record")
				continue
			}
		}

		var p model.Property
		if err := json.Unmarshal(raw, &p); err != nil {
			out.Skipped++
			logger.WithError(err).WithField("index", i).Warn("Skipping catalog record")
			continue
		}
		if seen[p.ID] {
			out.Skipped++
			logger.WithField("id", p.ID).Warn("Skipping duplicate catalog id")
			continue
		}
		seen[p.ID] = true
		out.Properties = append(out.Properties, p)
	}
	return out, nil
}
