package service

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/model"
)

const budgetSuffix = `(b|mm|millones|millon|mill|m)?`

var (
	budgetRangeRe = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)[-–](\d+(?:[.,]\d+)?)` + budgetSuffix + `$`)
	budgetMaxRe   = regexp.MustCompile(`^(<=|=<|≤|<)(\d+(?:[.,]\d+)?)` + budgetSuffix + `$`)
	budgetMinRe   = regexp.MustCompile(`^(>=|=>|≥|>)(\d+(?:[.,]\d+)?)` + budgetSuffix + `$`)
	budgetPlainRe = regexp.MustCompile(`^(\d{1,3}(?:\.\d{3})+|\d{1,3}(?:,\d{3})+|\d+(?:[.,]\d+)?)` + budgetSuffix + `$`)
	thousandsRe   = regexp.MustCompile(`^\d{1,3}(?:([.,])\d{3})+$`)

	// millionWords may follow a bare number as a separate word ("400 millones").
	millionWords = map[string]bool{"mm": true, "mill": true, "millon": true, "millones": true}
)

// ParseBudgetToken recognises one token as an amount or range in peso shorthand:
//
//	350m       -> [350e6, 350e6]
//	0.35b      -> [350e6, 350e6]
//	250-400m   -> [250e6, 400e6]
//	<=400m     -> [-, 400e6]
//	>=200m     -> [200e6, -]
//	1.200.000  -> [1.2e6, 1.2e6]
//
// A bare amount is a point, not a ceiling. Returns nil when the token is not a budget.
func ParseBudgetToken(token string) *model.PriceRange {
	t := strings.ToLower(strings.Join(strings.Fields(token), ""))
	if t == "" {
		return nil
	}

	if m := budgetRangeRe.FindStringSubmatch(t); m != nil {
		mult := budgetMultiplier(m[3])
		lo, ok1 := parseDecimal(m[1])
		hi, ok2 := parseDecimal(m[2])
		if !ok1 || !ok2 {
			return nil
		}
		return &model.PriceRange{Min: amount(lo, mult), Max: amount(hi, mult)}
	}
	if m := budgetMaxRe.FindStringSubmatch(t); m != nil {
		v, ok := parseDecimal(m[2])
		if !ok {
			return nil
		}
		return &model.PriceRange{Max: amount(v, budgetMultiplier(m[3]))}
	}
	if m := budgetMinRe.FindStringSubmatch(t); m != nil {
		v, ok := parseDecimal(m[2])
		if !ok {
			return nil
		}
		return &model.PriceRange{Min: amount(v, budgetMultiplier(m[3]))}
	}
	if m := budgetPlainRe.FindStringSubmatch(t); m != nil {
		var v float64
		var ok bool
		if thousandsRe.MatchString(m[1]) {
			v, ok = parseGrouped(m[1])
		} else {
			v, ok = parseDecimal(m[1])
		}
		if !ok {
			return nil
		}
		mult := budgetMultiplier(m[2])
		return &model.PriceRange{Min: amount(v, mult), Max: amount(v, mult)}
	}
	return nil
}

func budgetMultiplier(suffix string) float64 {
	switch suffix {
	case "b":
		return 1e9
	case "m", "mm", "mill", "millon", "millones":
		return 1e6
	}
	return 1
}

// amount rounds to whole pesos so 0.35b is exactly 350000000.
func amount(v, mult float64) *float64 {
	r := math.Round(v * mult)
	return &r
}

func parseDecimal(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	return v, err == nil
}

// parseGrouped reads "1.200.000" or "1,200,000". A single group such as "1.500"
// is ambiguous; it is read as thousands, matching how prices are written locally.
func parseGrouped(s string) (float64, bool) {
	digits := strings.NewReplacer(".", "", ",", "").Replace(s)
	v, err := strconv.ParseFloat(digits, 64)
	return v, err == nil
}
