package service

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/model"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/utils"
)

// minCorrectable is the shortest token the typo corrector will touch.
const minCorrectable = 4

// shorthandRe matches room, bathroom and parking minimums such as 3h, 2banos, 1g.
// The first letter of the unit selects the constraint.
var shorthandRe = regexp.MustCompile(`^(\d+)(habitaciones|hab|h|banos|ban|ba|b|parqueadero|garage|parq|park|gar|g)$`)

// IntentParser turns a free-text query into phrases, residual tokens and a constraint set.
type IntentParser struct {
	synonyms *SynonymIndex
}

// NewIntentParser creates a new intent parser
func NewIntentParser(synonyms *SynonymIndex) *IntentParser {
	if synonyms == nil {
		synonyms = DefaultSynonymIndex()
	}
	return &IntentParser{synonyms: synonyms}
}

// Parse extracts structured information from a query. vocab may be nil, in which
// case no typo correction happens.
//
// Numeric shorthands and budget tokens are picked off the raw words first, while
// "-", "<=", "." and "," are still there; the rest is normalized, multi-word
// synonyms are removed longest first, and each remaining word is mapped to a
// feature, a type, a corrected vocabulary term or kept as typed.
func (p *IntentParser) Parse(query string, vocab *Vocabulary) *model.IntentResult {
	result := &model.IntentResult{
		Normalized:  utils.Normalize(query),
		Phrases:     []model.Phrase{},
		Tokens:      []string{},
		Constraints: &model.ConstraintSet{},
	}
	c := result.Constraints

	// numeric shorthands and budgets on raw words
	words := strings.Fields(query)
	rest := make([]string, 0, len(words))
	for i := 0; i < len(words); i++ {
		tok := trimPunct(utils.FoldToken(words[i]))
		if i+1 < len(words) && utils.IsNumeric(tok) && millionWords[trimPunct(utils.FoldToken(words[i+1]))] {
			tok += "m"
			i++
		}
		if p.consumeNumeric(tok, c) {
			continue
		}
		rest = append(rest, words[i])
	}

	// multi-word phrases, longest first, each span consumed once
	work := " " + utils.Normalize(strings.Join(rest, " ")) + " "
	for _, ph := range p.synonyms.phrases {
		needle := " " + ph.match + " "
		if !strings.Contains(work, needle) {
			continue
		}
		for strings.Contains(work, needle) {
			work = strings.Replace(work, needle, " ", 1)
		}
		result.Phrases = append(result.Phrases, model.Phrase{Kind: ph.kind, Canonical: ph.canonical, Match: ph.match})
		switch ph.kind {
		case model.PhraseFeature:
			c.AddFeature(ph.canonical)
		case model.PhraseType:
			c.Type = ph.canonical
		}
	}

	for _, tok := range strings.Fields(work) {
		if p.consumeNumeric(tok, c) {
			continue
		}
		if canon, ok := p.synonyms.Feature(tok); ok {
			c.AddFeature(canon)
			continue
		}
		if canon, ok := p.synonyms.Type(tok); ok {
			// last type word wins
			c.Type = canon
			continue
		}
		if vocab != nil && utf8.RuneCountInString(tok) >= minCorrectable && !utils.IsNumeric(tok) {
			if cand, ok := vocab.Correct(tok); ok {
				if cand != tok {
					if result.Corrections == nil {
						result.Corrections = make(map[string]string)
					}
					result.Corrections[tok] = cand
				}
				result.Tokens = append(result.Tokens, cand)
				continue
			}
		}
		result.Tokens = append(result.Tokens, tok)
	}

	return result
}

// consumeNumeric applies a shorthand or budget token to c and reports whether it did.
func (p *IntentParser) consumeNumeric(tok string, c *model.ConstraintSet) bool {
	if tok == "" {
		return false
	}
	if m := shorthandRe.FindStringSubmatch(tok); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return false
		}
		switch m[2][0] {
		case 'h':
			c.RaiseBeds(n)
		case 'b':
			c.RaiseBaths(n)
		case 'g', 'p':
			c.RaiseParking(n)
		}
		return true
	}
	if r := ParseBudgetToken(tok); r != nil {
		c.Narrow(r)
		return true
	}
	return false
}

// trimPunct strips sentence punctuation around a word but keeps the comparison
// glyphs and separators the budget grammar needs.
func trimPunct(s string) string {
	return strings.Trim(s, ",;:!?¡¿()[]{}\"'.")
}
