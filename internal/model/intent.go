package model

// PriceRange is the result of parsing one budget token. A nil bound is unbounded on that side.
type PriceRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// PhraseKind tells whether a matched multi-word phrase named a feature or a property type.
type PhraseKind string

const (
	PhraseFeature PhraseKind = "feature"
	PhraseType    PhraseKind = "type"
)

// Phrase is a multi-word synonym found verbatim in the normalized query.
type Phrase struct {
	Kind      PhraseKind `json:"type"`
	Canonical string     `json:"canonical"`
	Match     string     `json:"match"`
}

// ConstraintSet holds the structured part of a query. It is built fresh for every query.
type ConstraintSet struct {
	BedsMin    *int     `json:"beds_min,omitempty"`
	BathsMin   *int     `json:"baths_min,omitempty"`
	ParkingMin *int     `json:"parking_min,omitempty"`
	Type       string   `json:"type,omitempty"`
	Features   []string `json:"features,omitempty"` // canonical names, insertion order, no duplicates
	PriceMin   *float64 `json:"price_min,omitempty"`
	PriceMax   *float64 `json:"price_max,omitempty"`
}

// AddFeature adds a canonical feature once.
func (c *ConstraintSet) AddFeature(canonical string) {
	if canonical == "" || c.HasFeature(canonical) {
		return
	}
	c.Features = append(c.Features, canonical)
}

// HasFeature reports whether the canonical feature is constrained.
func (c *ConstraintSet) HasFeature(canonical string) bool {
	for _, f := range c.Features {
		if f == canonical {
			return true
		}
	}
	return false
}

// RaiseBeds keeps the largest bedroom minimum seen.
func (c *ConstraintSet) RaiseBeds(n int) { c.BedsMin = maxIntPtr(c.BedsMin, n) }

// RaiseBaths keeps the largest bathroom minimum seen.
func (c *ConstraintSet) RaiseBaths(n int) { c.BathsMin = maxIntPtr(c.BathsMin, n) }

// RaiseParking keeps the largest parking minimum seen.
func (c *ConstraintSet) RaiseParking(n int) { c.ParkingMin = maxIntPtr(c.ParkingMin, n) }

// Narrow intersects the price window with r: the minimum only grows and the maximum only shrinks.
func (c *ConstraintSet) Narrow(r *PriceRange) {
	if r == nil {
		return
	}
	if r.Min != nil && (c.PriceMin == nil || *r.Min > *c.PriceMin) {
		v := *r.Min
		c.PriceMin = &v
	}
	if r.Max != nil && (c.PriceMax == nil || *r.Max < *c.PriceMax) {
		v := *r.Max
		c.PriceMax = &v
	}
}

// HasPrice reports whether any price bound is active.
func (c *ConstraintSet) HasPrice() bool {
	return c.PriceMin != nil || c.PriceMax != nil
}

// IsEmpty reports whether the set constrains nothing.
func (c *ConstraintSet) IsEmpty() bool {
	return c.BedsMin == nil && c.BathsMin == nil && c.ParkingMin == nil &&
		c.Type == "" && len(c.Features) == 0 && !c.HasPrice()
}

func maxIntPtr(cur *int, n int) *int {
	if cur != nil && *cur >= n {
		return cur
	}
	return &n
}

// IntentResult is the parsed form of a free-text query.
type IntentResult struct {
	Normalized  string            `json:"normalized"`
	Phrases     []Phrase          `json:"phrases"`
	Tokens      []string          `json:"tokens"`
	Corrections map[string]string `json:"corrections,omitempty"` // typed token -> vocabulary term
	Constraints *ConstraintSet    `json:"constraints"`
}

// IsEmpty reports whether there is nothing to rank against.
func (r *IntentResult) IsEmpty() bool {
	return len(r.Tokens) == 0 && len(r.Phrases) == 0 && (r.Constraints == nil || r.Constraints.IsEmpty())
}
