package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Listing sort orders.
const (
	SortRelevance = "relevance"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortNewest    = "newest"
	SortSqmDesc   = "sqm-desc"
)

// ListingFilters represents the listing page filters. Zero values mean "not set".
type ListingFilters struct {
	Search    string   `form:"q" json:"q,omitempty"`
	City      string   `form:"city" json:"city,omitempty"`
	Type      string   `form:"type" json:"type,omitempty"`
	Operation string   `form:"operation" json:"operation,omitempty"` // comprar, arrendar, alojamientos
	PriceMin  *float64 `form:"price_min" json:"price_min,omitempty"`
	PriceMax  *float64 `form:"price_max" json:"price_max,omitempty"`
	BedsMin   *int     `form:"beds_min" json:"beds_min,omitempty"`
	BathsMin  *int     `form:"baths_min" json:"baths_min,omitempty"`
	SqmMin    *float64 `form:"sqm_min" json:"sqm_min,omitempty"`
	SqmMax    *float64 `form:"sqm_max" json:"sqm_max,omitempty"`
	Sort      string   `form:"sort" json:"sort,omitempty"`
	Page      int      `form:"page" json:"page,omitempty"`
}

// ListingPage represents a paginated listing response
type ListingPage struct {
	Results    []Property `json:"results"`
	Total      int        `json:"total"`    // catalog size for the operation
	Filtered   int        `json:"filtered"` // matches after filters
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
	HasMore    bool       `json:"has_more"`
}

// JSONArray represents a JSON array column
type JSONArray []string

// Value implements driver.Valuer interface
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return "[]", nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface
func (j *JSONArray) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("unsupported JSONArray source %T", value)
	}
}
