package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/model"
)

// ErrUnknownOperation is returned when a listing filter names an operation that
// is not comprar, arrendar or alojamientos.
var ErrUnknownOperation = errors.New("unknown operation")

// OperationAliases maps each listing page to the operation values records may carry.
var OperationAliases = map[string][]string{
	"comprar":      {"comprar", "venta", "ventas", "sell", "sale"},
	"arrendar":     {"arrendar", "arriendo", "alquiler", "alquilar", "renta", "rent"},
	"alojamientos": {"dias", "por_dias", "alojar", "alojamientos", "por día", "temporada", "vacacional", "noche"},
}

// undatedListing sorts records without a usable "added" date last under "newest".
var undatedListing = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Browse filters, sorts and paginates the catalog the way the listing pages do.
// Filters compare raw field values; missing numbers count as 0.
func Browse(props []model.Property, f *model.ListingFilters, pageSize int) (*model.ListingPage, error) {
	if pageSize <= 0 {
		pageSize = 9
	}

	pool := props
	if f.Operation != "" {
		aliases, ok := OperationAliases[strings.ToLower(strings.TrimSpace(f.Operation))]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, f.Operation)
		}
		pool = make([]model.Property, 0, len(props))
		for _, p := range props {
			if containsString(aliases, strings.ToLower(strings.TrimSpace(p.Operation))) {
				pool = append(pool, p)
			}
		}
	}

	matched := make([]model.Property, 0, len(pool))
	terms := strings.Fields(strings.ToLower(f.Search))
	city := strings.ToLower(strings.TrimSpace(f.City))
	for _, p := range pool {
		if listingMatches(&p, f, terms, city) {
			matched = append(matched, p)
		}
	}

	sortListing(matched, f.Sort)

	page := f.Page
	if page < 1 {
		page = 1
	}
	totalPages := (len(matched) + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}

	return &model.ListingPage{
		Results:    matched[start:end],
		Total:      len(pool),
		Filtered:   len(matched),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		HasMore:    end < len(matched),
	}, nil
}

func listingMatches(p *model.Property, f *model.ListingFilters, terms []string, city string) bool {
	if len(terms) > 0 {
		searchable := strings.ToLower(strings.Join([]string{
			p.Title, p.Description, p.City, p.Type, p.Neighborhood, p.ID, strings.Join(p.Features, " "),
		}, " "))
		for _, t := range terms {
			if !strings.Contains(searchable, t) {
				return false
			}
		}
	}
	if city != "" && !strings.Contains(strings.ToLower(p.City), city) {
		return false
	}
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	if f.BedsMin != nil && intOrZero(p.Beds) < *f.BedsMin {
		return false
	}
	if f.BathsMin != nil && intOrZero(p.Baths) < *f.BathsMin {
		return false
	}
	if f.SqmMin != nil && p.Sqm < *f.SqmMin {
		return false
	}
	if f.SqmMax != nil && p.Sqm > *f.SqmMax {
		return false
	}
	if f.PriceMin != nil && p.Price < *f.PriceMin {
		return false
	}
	if f.PriceMax != nil && p.Price > *f.PriceMax {
		return false
	}
	return true
}

func sortListing(props []model.Property, order string) {
	var less func(a, b *model.Property) bool
	switch order {
	case model.SortPriceAsc:
		less = func(a, b *model.Property) bool { return a.Price < b.Price }
	case model.SortPriceDesc:
		less = func(a, b *model.Property) bool { return a.Price > b.Price }
	case model.SortNewest:
		less = func(a, b *model.Property) bool { return addedAt(a).After(addedAt(b)) }
	case model.SortSqmDesc:
		less = func(a, b *model.Property) bool { return a.Sqm > b.Sqm }
	default:
		less = func(a, b *model.Property) bool {
			if a.Featured != b.Featured {
				return a.Featured
			}
			return a.HighlightScore > b.HighlightScore
		}
	}
	sort.SliceStable(props, func(i, j int) bool { return less(&props[i], &props[j]) })
}

func addedAt(p *model.Property) time.Time {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, p.Added); err == nil {
			return t
		}
	}
	return undatedListing
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
