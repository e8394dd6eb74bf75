package service

import (
	"sort"
	"strings"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/config"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/model"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/utils"
)

// FeatureSynonyms is the built-in amenity dictionary (Spanish and English spellings).
// Order matters: when two canonicals share a spelling the later one wins.
var FeatureSynonyms = []config.SynonymEntry{
	{Canonical: "vista al mar", Synonyms: []string{"vista al mar", "frente al mar", "vista mar", "ocean view", "sea view", "vista al oceano", "vista oceano"}},
	{Canonical: "piscina", Synonyms: []string{"piscina", "alberca", "pileta", "swimming pool", "pool"}},
	{Canonical: "balcon", Synonyms: []string{"balcon", "balcón", "balcony"}},
	{Canonical: "terraza", Synonyms: []string{"terraza", "roof top", "rooftop", "azotea", "solarium"}},
	{Canonical: "ascensor", Synonyms: []string{"ascensor", "elevador", "elevator"}},
	{Canonical: "gimnasio", Synonyms: []string{"gimnasio", "gym", "fitness center"}},
	{Canonical: "parqueadero", Synonyms: []string{"parqueadero", "garaje", "garage", "estacionamiento", "parking"}},
	{Canonical: "porteria", Synonyms: []string{"portería", "porteria", "vigilancia", "seguridad 24/7", "seguridad"}},
	{Canonical: "bbq", Synonyms: []string{"bbq", "asador", "zona bbq", "barbecue"}},
	{Canonical: "jacuzzi", Synonyms: []string{"jacuzzi", "hot tub"}},
	{Canonical: "sauna", Synonyms: []string{"sauna"}},
	{Canonical: "mascotas", Synonyms: []string{"pet friendly", "admite mascotas", "mascotas", "petfriendly"}},
	{Canonical: "amoblado", Synonyms: []string{"amoblado", "amoblada", "amueblado", "amueblada", "furnished"}},
	{Canonical: "aire", Synonyms: []string{"aire acondicionado", "aire", "a/a", "air conditioning"}},
	{Canonical: "vista", Synonyms: []string{"vista", "panoramica", "panorámica", "city view"}},
}

// TypeSynonyms is the built-in property type dictionary.
var TypeSynonyms = []config.SynonymEntry{
	{Canonical: "apartamento", Synonyms: []string{"apartamento", "apartaestudio", "apto", "apartment", "flat", "aparta estudio"}},
	{Canonical: "casa", Synonyms: []string{"casa", "casaquinta", "house", "townhouse"}},
	{Canonical: "lote", Synonyms: []string{"lote", "terreno", "parcel", "lot"}},
	{Canonical: "oficina", Synonyms: []string{"oficina", "office"}},
}

// phraseEntry is a multi-word synonym the query parser looks for before tokenizing.
type phraseEntry struct {
	kind      model.PhraseKind
	canonical string
	match     string
}

// SynonymIndex inverts the feature and type dictionaries into normalized lookup tables.
// It is immutable after construction.
type SynonymIndex struct {
	featureIndex map[string]string
	typeIndex    map[string]string
	featureSyns  map[string][]string // canonical -> normalized synonyms, dictionary order
	features     []string            // canonical features, dictionary order
	types        []string
	phrases      []phraseEntry // longest first
	terms        []string      // every normalized canonical and synonym
}

// DefaultSynonymIndex builds the index from the built-in dictionaries.
func DefaultSynonymIndex() *SynonymIndex {
	return NewSynonymIndex(FeatureSynonyms, TypeSynonyms)
}

// SynonymIndexFromFile builds the index from a dictionary file. A nil file, or an
// empty section, falls back to the built-in dictionary for that section.
func SynonymIndexFromFile(f *config.SynonymFile) *SynonymIndex {
	if f == nil {
		return DefaultSynonymIndex()
	}
	features, types := f.Features, f.Types
	if len(features) == 0 {
		features = FeatureSynonyms
	}
	if len(types) == 0 {
		types = TypeSynonyms
	}
	return NewSynonymIndex(features, types)
}

// NewSynonymIndex builds an index from ordered dictionaries.
func NewSynonymIndex(features, types []config.SynonymEntry) *SynonymIndex {
	idx := &SynonymIndex{
		featureIndex: make(map[string]string),
		typeIndex:    make(map[string]string),
		featureSyns:  make(map[string][]string),
	}
	seenTerm := make(map[string]bool)
	addTerm := func(t string) {
		if t != "" && !seenTerm[t] {
			seenTerm[t] = true
			idx.terms = append(idx.terms, t)
		}
	}
	seenPhrase := make(map[string]bool)
	addPhrase := func(kind model.PhraseKind, canonical, match string) {
		key := string(kind) + "|" + match
		if !strings.Contains(match, " ") || seenPhrase[key] {
			return
		}
		seenPhrase[key] = true
		idx.phrases = append(idx.phrases, phraseEntry{kind: kind, canonical: canonical, match: match})
	}

	for _, e := range features {
		canon := utils.Normalize(e.Canonical)
		if canon == "" {
			continue
		}
		if _, ok := idx.featureSyns[canon]; !ok {
			idx.features = append(idx.features, canon)
		}
		addTerm(canon)
		addPhrase(model.PhraseFeature, canon, canon)
		for _, s := range e.Synonyms {
			n := utils.Normalize(s)
			if n == "" {
				continue
			}
			idx.featureIndex[n] = canon
			idx.featureSyns[canon] = appendUnique(idx.featureSyns[canon], n)
			addTerm(n)
			addPhrase(model.PhraseFeature, canon, n)
		}
		idx.featureIndex[canon] = canon
		if idx.featureSyns[canon] == nil {
			idx.featureSyns[canon] = []string{}
		}
	}

	for _, e := range types {
		canon := utils.Normalize(e.Canonical)
		if canon == "" {
			continue
		}
		idx.types = append(idx.types, canon)
		addTerm(canon)
		addPhrase(model.PhraseType, canon, canon)
		for _, s := range e.Synonyms {
			n := utils.Normalize(s)
			if n == "" {
				continue
			}
			idx.typeIndex[n] = canon
			addTerm(n)
			addPhrase(model.PhraseType, canon, n)
		}
		idx.typeIndex[canon] = canon
	}

	sort.SliceStable(idx.phrases, func(i, j int) bool {
		return len(idx.phrases[i].match) > len(idx.phrases[j].match)
	})

	return idx
}

// Feature resolves a normalized phrase to its canonical feature.
func (s *SynonymIndex) Feature(normalized string) (string, bool) {
	c, ok := s.featureIndex[normalized]
	return c, ok
}

// Type resolves a normalized phrase to its canonical property type.
func (s *SynonymIndex) Type(normalized string) (string, bool) {
	c, ok := s.typeIndex[normalized]
	return c, ok
}

// CanonicalFeature maps a free-text feature tag to its canonical name, or to
// its normalized form when no dictionary entry knows it.
func (s *SynonymIndex) CanonicalFeature(tag string) string {
	n := utils.Normalize(tag)
	if c, ok := s.featureIndex[n]; ok {
		return c
	}
	return n
}

// CanonicalType maps a record's type to the canonical type, or its normalized form.
func (s *SynonymIndex) CanonicalType(t string) string {
	n := utils.Normalize(t)
	if c, ok := s.typeIndex[n]; ok {
		return c
	}
	return n
}

// FeatureSynonyms returns the normalized synonyms of a canonical feature.
func (s *SynonymIndex) FeatureSynonyms(canonical string) []string {
	return s.featureSyns[canonical]
}

// Features returns the canonical features in dictionary order.
func (s *SynonymIndex) Features() []string { return s.features }

// Types returns the canonical types in dictionary order.
func (s *SynonymIndex) Types() []string { return s.types }

// Terms returns every normalized canonical term and synonym.
func (s *SynonymIndex) Terms() []string { return s.terms }

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
