package service

import (
	"math"
	"sort"
	"strings"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/config"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/model"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/utils"
)

// Match reason constants
const (
	ReasonTitleMatch        = "Title match"
	ReasonNeighborhoodMatch = "Neighborhood match"
	ReasonCityMatch         = "City match"
	ReasonIDMatch           = "Code match"
	ReasonFeatureMatch      = "Feature match"
	ReasonTypeMatch         = "Property type match"
	ReasonBedroomsMatch     = "Bedrooms verified"
	ReasonBathroomsMatch    = "Bathrooms verified"
	ReasonParkingMatch      = "Parking verified"
	ReasonPriceMatch        = "Price within budget"
	ReasonPopular           = "Popular"
	ReasonGeneralMatch      = "General match"
)

// excluded is the score of a property that fails a hard constraint.
const excluded = -1.0

// Weights are the additive points of the scoring table.
type Weights struct {
	Title, Neighborhood, City, ID, Type, Features float64 // per token hit
	FeatureMatch, TypeMatch                       float64 // per satisfied constraint
	Overlap                                       float64 // scale of the character-overlap signal
	Beds, Baths, Parking, Price                   float64 // verified numeric constraints
	Popularity                                    float64 // scale of log(1+clicks)
}

// DefaultWeights returns the reference weights.
func DefaultWeights() Weights {
	return Weights{
		Title: 55, Neighborhood: 45, City: 35, ID: 40, Type: 15, Features: 70,
		FeatureMatch: 85, TypeMatch: 55,
		Overlap: 18,
		Beds: 22, Baths: 18, Parking: 14, Price: 12,
		Popularity: 8,
	}
}

// WeightsFromConfig maps the RANK_WEIGHT_* settings.
func WeightsFromConfig(c config.RankingConfig) Weights {
	return Weights{
		Title: c.WeightTitle, Neighborhood: c.WeightNeighborhood, City: c.WeightCity,
		ID: c.WeightID, Type: c.WeightType, Features: c.WeightFeatures,
		FeatureMatch: c.WeightFeatureMatch, TypeMatch: c.WeightTypeMatch,
		Overlap: c.WeightOverlap,
		Beds: c.WeightBeds, Baths: c.WeightBaths, Parking: c.WeightParking, Price: c.WeightPrice,
		Popularity: c.WeightPopularity,
	}
}

// fieldBag is the normalized text of one property, computed once per index build.
type fieldBag struct {
	title, hood, city, id, typ, desc, feats string
	canonicalType                            string
	all                                      string
}

func newFieldBag(p *model.Property, syn *SynonymIndex) fieldBag {
	b := fieldBag{
		title:         utils.Normalize(p.Title),
		hood:          utils.Normalize(p.Neighborhood),
		city:          utils.Normalize(p.City),
		id:            utils.Normalize(p.ID),
		typ:           utils.Normalize(p.Type),
		desc:          utils.Normalize(p.Description),
		canonicalType: syn.CanonicalType(p.Type),
	}

	// explicit features and boolean flags, each expanded to its synonyms
	tags := make([]string, 0, len(p.Features)+len(p.Flags))
	tags = append(tags, p.Features...)
	tags = append(tags, p.Flags...)
	var expanded []string
	seen := make(map[string]bool)
	push := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			expanded = append(expanded, s)
		}
	}
	for _, tag := range tags {
		canon := syn.CanonicalFeature(tag)
		push(canon)
		for _, s := range syn.FeatureSynonyms(canon) {
			push(s)
		}
	}
	b.feats = strings.Join(expanded, " ")
	b.all = strings.Join([]string{b.title, b.hood, b.city, b.id, b.typ, b.desc, b.feats}, " ")
	return b
}

// hitsGated reports whether tok appears in one of the gate fields (everything but the description).
func (b *fieldBag) hitsGated(tok string) bool {
	return strings.Contains(b.title, tok) || strings.Contains(b.hood, tok) ||
		strings.Contains(b.city, tok) || strings.Contains(b.id, tok) ||
		strings.Contains(b.typ, tok) || strings.Contains(b.feats, tok)
}

func (b *fieldBag) hasFeature(canonical string) bool {
	return containsWord(b.feats, canonical)
}

func (b *fieldBag) hasType(canonical string) bool {
	return b.canonicalType == canonical || strings.Contains(b.typ, canonical)
}

// containsWord is a substring test aligned on word boundaries of a space-joined bag.
func containsWord(bag, phrase string) bool {
	return strings.Contains(" "+bag+" ", " "+phrase+" ")
}

// indexEntry is one catalog record with its precomputed field bag.
type indexEntry struct {
	prop model.Property
	bag  fieldBag
}

// ScoredProperty is a property that survived ranking.
type ScoredProperty struct {
	Property       *model.Property
	Score          float64
	MatchedReasons []string
	Clicks         int64
}

// RankOutcome is the ranked, capped result of one query.
type RankOutcome struct {
	Results []ScoredProperty
	Total   int  // matches before the cap
	Relaxed bool // produced by the any-token fallback
}

// Ranker handles ranking and scoring of search results
type Ranker struct {
	w Weights
}

// NewRanker creates a new ranker with specified weights
func NewRanker(w Weights) *Ranker {
	return &Ranker{w: w}
}

// Weights returns the ranker's weights.
func (r *Ranker) Weights() Weights { return r.w }

// Rank gates, scores and orders entries for the parsed query, keeping at most limit results.
// clicks may be nil.
func (r *Ranker) Rank(entries []indexEntry, q *model.IntentResult, clicks map[string]int64, limit int) RankOutcome {
	strongGate := utf8Len(q.Normalized) >= 3

	out := RankOutcome{}
	results := r.pass(entries, q, clicks, func(b *fieldBag) bool {
		if !strongGate {
			return true
		}
		for _, tok := range q.Tokens {
			if !b.hitsGated(tok) {
				return false
			}
		}
		return true
	})

	if len(results) == 0 && strongGate {
		results = r.pass(entries, q, clicks, func(b *fieldBag) bool {
			for _, tok := range q.Tokens {
				if b.hitsGated(tok) {
					return true
				}
			}
			return false
		})
		out.Relaxed = len(results) > 0
	}

	// Stable keeps catalog order between equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	out.Total = len(results)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	out.Results = results
	return out
}

func (r *Ranker) pass(entries []indexEntry, q *model.IntentResult, clicks map[string]int64, gate func(*fieldBag) bool) []ScoredProperty {
	var results []ScoredProperty
	for i := range entries {
		e := &entries[i]
		if !gate(&e.bag) {
			continue
		}
		n := clicks[e.prop.ID]
		score, reasons := r.Score(e, q, n)
		if score <= 0 {
			continue
		}
		results = append(results, ScoredProperty{
			Property:       &e.prop,
			Score:          score,
			MatchedReasons: reasons,
			Clicks:         n,
		})
	}
	return results
}

// Score computes the additive score of one entry. A property failing a hard
// constraint scores -1. Unknown values never fail a constraint.
func (r *Ranker) Score(e *indexEntry, q *model.IntentResult, clicks int64) (float64, []string) {
	b := &e.bag
	p := &e.prop
	c := q.Constraints
	if c == nil {
		c = &model.ConstraintSet{}
	}
	reasons := newReasonSet()

	var s float64
	for _, tok := range q.Tokens {
		if strings.Contains(b.title, tok) {
			s += r.w.Title
			reasons.add(ReasonTitleMatch)
		}
		if strings.Contains(b.hood, tok) {
			s += r.w.Neighborhood
			reasons.add(ReasonNeighborhoodMatch)
		}
		if strings.Contains(b.city, tok) {
			s += r.w.City
			reasons.add(ReasonCityMatch)
		}
		if strings.Contains(b.id, tok) {
			s += r.w.ID
			reasons.add(ReasonIDMatch)
		}
		if strings.Contains(b.typ, tok) {
			s += r.w.Type
		}
		if strings.Contains(b.feats, tok) {
			s += r.w.Features
			reasons.add(ReasonFeatureMatch)
		}
	}

	for _, f := range c.Features {
		if b.hasFeature(f) {
			s += r.w.FeatureMatch
			reasons.add(ReasonFeatureMatch)
		}
	}
	if c.Type != "" && b.hasType(c.Type) {
		s += r.w.TypeMatch
		reasons.add(ReasonTypeMatch)
	}

	s += utils.OverlapScore(q.Normalized, b.all) * r.w.Overlap

	// hard gates
	if c.BedsMin != nil && p.Beds != nil {
		if *p.Beds < *c.BedsMin {
			return excluded, nil
		}
		s += r.w.Beds
		reasons.add(ReasonBedroomsMatch)
	}
	if c.BathsMin != nil && p.Baths != nil {
		if *p.Baths < *c.BathsMin {
			return excluded, nil
		}
		s += r.w.Baths
		reasons.add(ReasonBathroomsMatch)
	}
	if c.ParkingMin != nil && p.Parking != nil {
		if *p.Parking < *c.ParkingMin {
			return excluded, nil
		}
		s += r.w.Parking
		reasons.add(ReasonParkingMatch)
	}
	if price, known := p.KnownPrice(); known {
		if c.PriceMin != nil && price < *c.PriceMin {
			return excluded, nil
		}
		if c.PriceMax != nil && price > *c.PriceMax {
			return excluded, nil
		}
	}
	if c.HasPrice() {
		s += r.w.Price
		if _, known := p.KnownPrice(); known {
			reasons.add(ReasonPriceMatch)
		}
	}

	if clicks > 0 {
		s += math.Log1p(float64(clicks)) * r.w.Popularity
		reasons.add(ReasonPopular)
	}

	if len(reasons.list) == 0 {
		reasons.add(ReasonGeneralMatch)
	}
	return s, reasons.list
}

type reasonSet struct {
	list []string
	seen map[string]bool
}

func newReasonSet() *reasonSet {
	return &reasonSet{list: []string{}, seen: make(map[string]bool)}
}

func (r *reasonSet) add(reason string) {
	if !r.seen[reason] {
		r.seen[reason] = true
		r.list = append(r.list, reason)
	}
}

func utf8Len(s string) int {
	return len([]rune(s))
}
