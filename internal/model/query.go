package model

// SearchRequest represents a suggestion query request
type SearchRequest struct {
	Query     string         `json:"query" binding:"required"`
	SessionID string         `json:"session_id,omitempty"`
	Seq       uint64         `json:"seq,omitempty"`
	Options   *SearchOptions `json:"options,omitempty"`
}

// SearchOptions represents search options
type SearchOptions struct {
	TopK int `json:"top_k"`
}

// Suggestion is one ranked catalog record.
type Suggestion struct {
	Property       Property `json:"property"`
	Score          float64  `json:"score"`
	MatchedReasons []string `json:"matched_reasons"`
	Slug           string   `json:"slug"`
	URL            string   `json:"url"`
	Clicks         int64    `json:"clicks"`
}

// SearchResponse represents a suggestion response
type SearchResponse struct {
	SearchID   string        `json:"search_id"`
	SessionID  string        `json:"session_id,omitempty"`
	Seq        uint64        `json:"seq,omitempty"`
	Results    []Suggestion  `json:"results"`
	Total      int           `json:"total"`    // matches before the cap
	Relaxed    bool          `json:"relaxed"`  // produced by the any-token fallback gate
	Superseded bool          `json:"superseded,omitempty"`
	Intent     *IntentResult `json:"intent,omitempty"`
	CatalogVer string        `json:"catalog_version,omitempty"`
	Took       int64         `json:"took_ms"` // Response time in milliseconds
}

// FeedbackRequest represents user feedback/action
type FeedbackRequest struct {
	SearchID  string `json:"search_id"`
	ListingID string `json:"listing_id" binding:"required"`
	Action    string `json:"action" binding:"required"` // click, contact, view_details
}

// FeedbackResponse represents feedback response
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Clicks  int64  `json:"clicks"`
	Message string `json:"message,omitempty"`
}

// VocabularyResponse lists vocabulary terms sharing a prefix.
type VocabularyResponse struct {
	Prefix string   `json:"prefix"`
	Terms  []string `json:"terms"`
	Total  int      `json:"total"`
}

// CatalogStatus describes the catalog currently being served.
type CatalogStatus struct {
	Version    string `json:"version"`
	Properties int    `json:"properties"`
	Vocabulary int    `json:"vocabulary"`
	Source     string `json:"source"`
	Stale      bool   `json:"stale"`
	FetchedAt  string `json:"fetched_at,omitempty"`
	CheckedAt  string `json:"checked_at,omitempty"`
	Skipped    int    `json:"skipped"`
}

// SearchLog is one row of the search log.
type SearchLog struct {
	SearchID    string    `db:"search_id"`
	Query       string    `db:"query"`
	Tokens      JSONArray `db:"tokens"`
	ResultIDs   JSONArray `db:"result_ids"`
	ResultCount int       `db:"result_count"`
	Relaxed     bool      `db:"relaxed"`
	TookMs      int       `db:"took_ms"`
}
