package service

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/model"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/utils"
	"github.com/tchap/go-patricia/v2/patricia"
)

// minTitleWord is the shortest title word that enters the vocabulary.
const minTitleWord = 4

// Vocabulary is the sorted, deduplicated pool of normalized terms used for typo
// correction and prefix completion. It is never mutated after BuildVocabulary.
type Vocabulary struct {
	terms  []string
	set    map[string]struct{}
	byLen  map[int][]string // rune length -> terms, sorted
	prefix *patricia.Trie
}

// BuildVocabulary collects terms from the catalog (cities, neighborhoods, types,
// ids, significant title words, explicit and boolean-derived features) plus every
// dictionary term.
func BuildVocabulary(props []model.Property, syn *SynonymIndex) *Vocabulary {
	set := make(map[string]struct{})
	add := func(raw string) {
		if t := utils.Normalize(raw); t != "" {
			set[t] = struct{}{}
		}
	}

	for i := range props {
		p := &props[i]
		add(p.City)
		add(p.Neighborhood)
		add(p.Type)
		add(p.ID)
		for _, w := range strings.Fields(p.Title) {
			if utf8.RuneCountInString(w) >= minTitleWord {
				add(w)
			}
		}
		for _, f := range p.Features {
			add(f)
		}
		for _, f := range p.Flags {
			add(f)
		}
	}
	for _, t := range syn.Terms() {
		set[t] = struct{}{}
	}

	return newVocabulary(set)
}

// NewVocabulary builds a vocabulary from raw terms. Mostly useful in tests.
func NewVocabulary(terms ...string) *Vocabulary {
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		if n := utils.Normalize(t); n != "" {
			set[n] = struct{}{}
		}
	}
	return newVocabulary(set)
}

func newVocabulary(set map[string]struct{}) *Vocabulary {
	v := &Vocabulary{
		terms:  make([]string, 0, len(set)),
		set:    set,
		byLen:  make(map[int][]string),
		prefix: patricia.NewTrie(),
	}
	for t := range set {
		v.terms = append(v.terms, t)
	}
	sort.Strings(v.terms)
	for _, t := range v.terms {
		n := utf8.RuneCountInString(t)
		v.byLen[n] = append(v.byLen[n], t)
		v.prefix.Insert(patricia.Prefix(t), n)
	}
	return v
}

// Terms returns the sorted vocabulary.
func (v *Vocabulary) Terms() []string { return v.terms }

// Len returns the number of terms.
func (v *Vocabulary) Len() int { return len(v.terms) }

// Contains reports exact membership.
func (v *Vocabulary) Contains(term string) bool {
	_, ok := v.set[term]
	return ok
}

// Correct finds the vocabulary term within one edit of token.
// An exact member is returned unchanged. Among several one-edit candidates the one
// sharing the longest prefix with token wins; remaining ties go to the first in
// sorted order, so the answer never depends on catalog order.
func (v *Vocabulary) Correct(token string) (string, bool) {
	if v.Contains(token) {
		return token, true
	}

	n := utf8.RuneCountInString(token)
	best, bestPrefix := "", -1
	for _, l := range []int{n - 1, n, n + 1} {
		for _, cand := range v.byLen[l] {
			if !utils.WithinOneEdit(token, cand) {
				continue
			}
			sp := utils.SharedPrefixLen(token, cand)
			if sp > bestPrefix || (sp == bestPrefix && cand < best) {
				best, bestPrefix = cand, sp
			}
		}
	}
	return best, bestPrefix >= 0
}

// Complete returns up to limit terms starting with prefix, in sorted order.
// A limit <= 0 returns every match.
func (v *Vocabulary) Complete(prefix string, limit int) []string {
	prefix = utils.Normalize(prefix)
	out := []string{}
	_ = v.prefix.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, _ patricia.Item) error {
		out = append(out, string(p))
		return nil
	})
	sort.Strings(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
