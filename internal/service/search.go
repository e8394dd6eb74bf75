package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/catalog"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/model"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/repository"

	goslug "github.com/gosimple/slug"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrListingNotFound is returned when an id is not in the current catalog.
var ErrListingNotFound = errors.New("listing not found")

// maxTopK bounds the per-request override of the suggestion cap.
const maxTopK = 50

// detailPage is the page a suggestion links to.
const detailPage = "detalle-propiedad.html"

// CatalogLoader provides catalog snapshots. *catalog.Loader implements it.
type CatalogLoader interface {
	Load(ctx context.Context) (*catalog.Snapshot, error)
	Refresh(ctx context.Context) (*catalog.Snapshot, error)
	Watch(ctx context.Context, interval time.Duration, current string, onChange func(*catalog.Snapshot))
}

// Options tunes the search service.
type Options struct {
	MaxSuggestions int
	MinChars       int
	PageSize       int
}

// DefaultOptions returns the suggestion box defaults.
func DefaultOptions() Options {
	return Options{MaxSuggestions: 12, MinChars: 2, PageSize: 9}
}

// SearchService handles search business logic
type SearchService struct {
	loader   CatalogLoader
	synonyms *SynonymIndex
	intent   *IntentParser
	ranker   *Ranker
	feedback repository.FeedbackStore
	logs     repository.SearchLogger
	sessions *SessionRegistry
	opts     Options
	logger   *logrus.Logger

	index atomic.Pointer[Index]
}

// NewSearchService creates a new search service. logs may be nil.
func NewSearchService(
	loader CatalogLoader,
	synonyms *SynonymIndex,
	ranker *Ranker,
	feedback repository.FeedbackStore,
	logs repository.SearchLogger,
	opts Options,
	logger *logrus.Logger,
) *SearchService {
	if synonyms == nil {
		synonyms = DefaultSynonymIndex()
	}
	return &SearchService{
		loader:   loader,
		synonyms: synonyms,
		intent:   NewIntentParser(synonyms),
		ranker:   ranker,
		feedback: feedback,
		logs:     logs,
		sessions: NewSessionRegistry(),
		opts:     opts,
		logger:   logger,
	}
}

// SearchEventCallback is called for streaming search events
type SearchEventCallback func(event string, data any) error

// Load reads the catalog (cache first) and publishes its index.
func (s *SearchService) Load(ctx context.Context) error {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return err
	}
	s.Publish(snap)
	return nil
}

// Reload fetches the catalog from its source and publishes the new index.
func (s *SearchService) Reload(ctx context.Context) (*model.CatalogStatus, error) {
	snap, err := s.loader.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return s.Publish(snap).Status(), nil
}

// Watch keeps the index in sync with the catalog until ctx is done.
func (s *SearchService) Watch(ctx context.Context, interval time.Duration) {
	current := ""
	if idx := s.index.Load(); idx != nil {
		current = idx.Version
	}
	s.loader.Watch(ctx, interval, current, func(snap *catalog.Snapshot) {
		s.Publish(snap)
	})
}

// Publish builds an index for snap and swaps it in. In-flight queries keep the old one.
func (s *SearchService) Publish(snap *catalog.Snapshot) *Index {
	idx := BuildIndex(snap, s.synonyms)
	s.index.Store(idx)
	s.logger.WithFields(logrus.Fields{
		"version":    idx.Version,
		"properties": len(idx.Properties),
		"vocabulary": idx.Vocabulary.Len(),
		"stale":      idx.Stale,
	}).Info("Search index published")
	return idx
}

// Status describes the catalog being served.
func (s *SearchService) Status() (*model.CatalogStatus, error) {
	idx := s.index.Load()
	if idx == nil {
		return nil, catalog.ErrCatalogUnavailable
	}
	return idx.Status(), nil
}

// Sessions exposes the session registry for pruning.
func (s *SearchService) Sessions() *SessionRegistry { return s.sessions }

// Search performs a complete search: parse, gate, score and rank.
func (s *SearchService) Search(ctx context.Context, req *model.SearchRequest) (*model.SearchResponse, error) {
	return s.run(ctx, req, nil)
}

// SearchStream performs a search, reporting the parsed intent before the results.
// The final event is "results", or "superseded" when a newer query of the same
// session arrived while this one was running.
func (s *SearchService) SearchStream(ctx context.Context, req *model.SearchRequest, callback SearchEventCallback) (*model.SearchResponse, error) {
	resp, err := s.run(ctx, req, func(intent *model.IntentResult) error {
		return callback("intent", intent)
	})
	if err != nil {
		return nil, err
	}
	if resp.Superseded {
		return resp, callback("superseded", map[string]any{
			"session_id": resp.SessionID,
			"seq":        resp.Seq,
		})
	}
	return resp, callback("results", resp)
}

func (s *SearchService) run(ctx context.Context, req *model.SearchRequest, onIntent func(*model.IntentResult) error) (*model.SearchResponse, error) {
	startTime := time.Now()

	idx := s.index.Load()
	if idx == nil {
		return nil, catalog.ErrCatalogUnavailable
	}

	resp := &model.SearchResponse{
		SearchID:   uuid.NewString(),
		SessionID:  req.SessionID,
		Results:    []model.Suggestion{},
		CatalogVer: idx.Version,
	}
	if req.SessionID != "" {
		resp.Seq = s.sessions.Begin(req.SessionID, req.Seq)
	}

	if utf8Len(strings.TrimSpace(req.Query)) < s.opts.MinChars {
		resp.Took = time.Since(startTime).Milliseconds()
		return resp, nil
	}

	intent := s.intent.Parse(req.Query, idx.Vocabulary)
	resp.Intent = intent
	if onIntent != nil {
		if err := onIntent(intent); err != nil {
			return nil, err
		}
	}
	if intent.IsEmpty() {
		resp.Took = time.Since(startTime).Milliseconds()
		return resp, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clicks, err := s.feedback.Counts(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Click counts unavailable, ranking without popularity")
		clicks = nil
	}

	limit := s.opts.MaxSuggestions
	if req.Options != nil && req.Options.TopK > 0 {
		limit = req.Options.TopK
		if limit > maxTopK {
			limit = maxTopK
		}
	}
	outcome := s.ranker.Rank(idx.entries, intent, clicks, limit)

	if req.SessionID != "" && !s.sessions.Current(req.SessionID, resp.Seq) {
		resp.Superseded = true
		resp.Took = time.Since(startTime).Milliseconds()
		return resp, nil
	}

	resp.Total = outcome.Total
	resp.Relaxed = outcome.Relaxed
	for _, r := range outcome.Results {
		resp.Results = append(resp.Results, toSuggestion(r))
	}
	resp.Took = time.Since(startTime).Milliseconds()

	s.logSearch(req.Query, resp)
	return resp, nil
}

// logSearch records the search without blocking the response.
func (s *SearchService) logSearch(query string, resp *model.SearchResponse) {
	if s.logs == nil {
		return
	}
	entry := &model.SearchLog{
		SearchID:    resp.SearchID,
		Query:       query,
		Tokens:      model.JSONArray(resp.Intent.Tokens),
		ResultIDs:   make(model.JSONArray, len(resp.Results)),
		ResultCount: resp.Total,
		Relaxed:     resp.Relaxed,
		TookMs:      int(resp.Took),
	}
	for i, r := range resp.Results {
		entry.ResultIDs[i] = r.Property.ID
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.logs.LogSearch(ctx, entry); err != nil {
			s.logger.WithError(err).WithField("search_id", entry.SearchID).Warn("Failed to log search")
		}
	}()
}

func toSuggestion(r ScoredProperty) model.Suggestion {
	return model.Suggestion{
		Property:       *r.Property,
		Score:          r.Score,
		MatchedReasons: r.MatchedReasons,
		Slug:           PropertySlug(r.Property),
		URL:            DetailURL(r.Property.ID),
		Clicks:         r.Clicks,
	}
}

// PropertySlug returns a URL-safe slug of the title, or of the id when the title is empty.
func PropertySlug(p *model.Property) string {
	if s := goslug.Make(p.Title); s != "" {
		return s
	}
	return goslug.Make(p.ID)
}

// DetailURL returns the detail page link of a property.
func DetailURL(id string) string {
	return detailPage + "?id=" + url.QueryEscape(id)
}

// RecordClick counts a click on a suggestion. It never fails the caller;
// storage problems are absorbed by the feedback store.
func (s *SearchService) RecordClick(ctx context.Context, id string) (int64, error) {
	return s.feedback.RecordClick(ctx, id)
}

// LogFeedback logs user feedback/action
func (s *SearchService) LogFeedback(ctx context.Context, searchID, listingID, action string) error {
	if s.logs == nil || searchID == "" {
		return nil
	}
	return s.logs.LogFeedback(ctx, searchID, listingID, action)
}

// GetListing retrieves a single listing by ID
func (s *SearchService) GetListing(ctx context.Context, id string) (*model.Property, error) {
	idx := s.index.Load()
	if idx == nil {
		return nil, catalog.ErrCatalogUnavailable
	}
	p, ok := idx.Lookup(id)
	if !ok {
		return nil, ErrListingNotFound
	}
	return p, nil
}

// Browse runs the listing page filters over the current catalog.
func (s *SearchService) Browse(ctx context.Context, f *model.ListingFilters) (*model.ListingPage, error) {
	idx := s.index.Load()
	if idx == nil {
		return nil, catalog.ErrCatalogUnavailable
	}
	return Browse(idx.Properties, f, s.opts.PageSize)
}

// Complete returns vocabulary terms starting with the normalized prefix.
func (s *SearchService) Complete(ctx context.Context, prefix string, limit int) (*model.VocabularyResponse, error) {
	idx := s.index.Load()
	if idx == nil {
		return nil, catalog.ErrCatalogUnavailable
	}
	terms := idx.Vocabulary.Complete(prefix, limit)
	return &model.VocabularyResponse{
		Prefix: prefix,
		Terms:  terms,
		Total:  len(terms),
	}, nil
}
