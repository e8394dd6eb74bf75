package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Property is a single record of the catalog feed.
// Optional numeric fields are pointers: nil means the feed did not say, which scoring treats as unknown.
type Property struct {
	ID             string   `json:"id"`
	Title          string   `json:"title,omitempty"`
	City           string   `json:"city,omitempty"`
	Neighborhood   string   `json:"neighborhood,omitempty"`
	Type           string   `json:"type,omitempty"`
	Operation      string   `json:"operation,omitempty"`
	Price          float64  `json:"price,omitempty"` // 0 = unknown
	Beds           *int     `json:"beds,omitempty"`
	Baths          *int     `json:"baths,omitempty"`
	Parking        *int     `json:"parking,omitempty"`
	Sqm            float64  `json:"sqm,omitempty"`
	Features       []string `json:"features,omitempty"`
	Description    string   `json:"description,omitempty"`
	Image          string   `json:"image,omitempty"`
	Featured       bool     `json:"featured,omitempty"`
	HighlightScore float64  `json:"highlightScore,omitempty"`
	Added          string   `json:"added,omitempty"`

	// Flags holds canonical feature names derived from boolean-like fields (pool, hasElevator, ...).
	Flags []string `json:"flags,omitempty"`
}

// FlagField ties a canonical feature to the record keys that switch it on.
type FlagField struct {
	Canonical string
	Keys      []string
}

// BooleanFlags lists the boolean-like record fields that contribute canonical features.
var BooleanFlags = []FlagField{
	{Canonical: "piscina", Keys: []string{"pool", "hasPool", "piscina"}},
	{Canonical: "balcon", Keys: []string{"balcon", "balcony", "hasBalcony"}},
	{Canonical: "ascensor", Keys: []string{"ascensor", "elevator", "hasElevator"}},
	{Canonical: "gimnasio", Keys: []string{"gym", "gimnasio", "hasGym"}},
	{Canonical: "parqueadero", Keys: []string{"parqueadero", "garage", "estacionamiento", "parking", "hasParking"}},
	{Canonical: "terraza", Keys: []string{"terraza", "rooftop", "roof", "hasTerrace"}},
	{Canonical: "vista al mar", Keys: []string{"oceanView", "seaView", "vistaMar"}},
	{Canonical: "amoblado", Keys: []string{"furnished", "amoblado"}},
	{Canonical: "mascotas", Keys: []string{"petFriendly", "mascotas"}},
}

var (
	neighborhoodKeys = []string{"neighborhood", "barrio"}
	priceKeys        = []string{"price", "precio"}
	bedsKeys         = []string{"beds", "bedrooms", "habitaciones", "rooms"}
	bathsKeys        = []string{"baths", "bathrooms", "banos", "baños"}
	parkingKeys      = []string{"parking", "parqueadero", "garaje", "garages"}
)

// UnmarshalJSON decodes a feed record, accepting the field aliases and loose
// number encodings seen in hand-maintained feeds. Only a missing id is an error.
func (p *Property) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("property record is not an object: %w", err)
	}

	out := Property{
		ID:          rawText(raw["id"]),
		Title:       rawText(raw["title"]),
		City:        rawText(raw["city"]),
		Type:        rawText(raw["type"]),
		Operation:   rawText(raw["operation"]),
		Description: rawText(raw["description"]),
		Image:       rawText(raw["image"]),
		Added:       rawText(raw["added"]),
	}
	if out.ID == "" {
		return fmt.Errorf("property record has no id")
	}

	for _, k := range neighborhoodKeys {
		if v := rawText(raw[k]); v != "" {
			out.Neighborhood = v
			break
		}
	}
	for _, k := range priceKeys {
		if v, ok := rawNumber(raw[k]); ok && v != 0 {
			out.Price = v
			break
		}
	}
	out.Beds = firstInt(raw, bedsKeys)
	out.Baths = firstInt(raw, bathsKeys)
	out.Parking = firstInt(raw, parkingKeys)
	if v, ok := rawNumber(raw["sqm"]); ok {
		out.Sqm = v
	}
	if v, ok := rawNumber(raw["highlightScore"]); ok {
		out.HighlightScore = v
	}
	out.Featured = rawTruthy(raw["featured"])

	if f, ok := raw["features"]; ok {
		var feats []any
		if err := json.Unmarshal(f, &feats); err == nil {
			for _, v := range feats {
				if s := strings.TrimSpace(fmt.Sprint(v)); s != "" && v != nil {
					out.Features = append(out.Features, s)
				}
			}
		}
	}

	seen := map[string]bool{}
	if f, ok := raw["flags"]; ok {
		var flags []string
		if err := json.Unmarshal(f, &flags); err == nil {
			for _, flag := range flags {
				if flag != "" && !seen[flag] {
					seen[flag] = true
					out.Flags = append(out.Flags, flag)
				}
			}
		}
	}
	for _, bf := range BooleanFlags {
		if seen[bf.Canonical] {
			continue
		}
		for _, k := range bf.Keys {
			if rawTruthy(raw[k]) {
				seen[bf.Canonical] = true
				out.Flags = append(out.Flags, bf.Canonical)
				break
			}
		}
	}

	*p = out
	return nil
}

// HasFlag reports whether a boolean-derived canonical feature is set.
func (p *Property) HasFlag(canonical string) bool {
	for _, f := range p.Flags {
		if f == canonical {
			return true
		}
	}
	return false
}

// KnownPrice returns the price and whether it is known.
func (p *Property) KnownPrice() (float64, bool) {
	return p.Price, p.Price > 0
}

func firstInt(raw map[string]json.RawMessage, keys []string) *int {
	for _, k := range keys {
		if v, ok := rawNumber(raw[k]); ok {
			n := int(v)
			return &n
		}
	}
	return nil
}

// rawText returns strings as-is and renders numbers as text; anything else is "".
func rawText(msg json.RawMessage) string {
	if len(msg) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(msg, &n); err == nil {
		return n.String()
	}
	return ""
}

// rawNumber accepts JSON numbers and numeric strings ("3", "380.000.000", "1,5").
// Booleans and null are not numbers.
func rawNumber(msg json.RawMessage) (float64, bool) {
	if len(msg) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(msg, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return 0, false
	}
	return parseLooseNumber(s)
}

func parseLooseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	// thousands separators: "380.000.000" or "380,000,000"
	if strings.Count(s, ".") > 1 || strings.Count(s, ",") > 1 || (strings.Contains(s, ".") && strings.Contains(s, ",")) {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, s)
		if v, err := strconv.ParseFloat(digits, 64); err == nil {
			return v, true
		}
	}
	// decimal comma: "1,5"
	if v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64); err == nil {
		return v, true
	}
	return 0, false
}

// rawTruthy mirrors loose truthiness: true, non-zero numbers and non-empty strings
// other than "false", "0" and "no" count as set.
func rawTruthy(msg json.RawMessage) bool {
	if len(msg) == 0 {
		return false
	}
	var v any
	if err := json.Unmarshal(msg, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "", "false", "0", "no":
			return false
		}
		return true
	case []any:
		return true
	case map[string]any:
		return true
	}
	return false
}
