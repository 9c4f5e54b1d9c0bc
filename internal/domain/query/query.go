// Package query is the catalog query engine: free-text search, facet filters,
// ordering and "show more" pagination over an in-memory snapshot.
//
// Every function is pure and total. Inputs are never mutated; results are
// fresh slices sharing the immutable items.
package query

import (
	"slices"
	"sort"
	"strings"

	"github.com/medwayhorizons/healthbridge/internal/domain/catalog"
)

// Defaults of the listing pages.
const (
	DefaultInitial   = 6
	DefaultIncrement = 6
)

// Search keeps items whose searchable text contains freeText, ignoring case
// and surrounding whitespace. Blank freeText keeps everything.
func Search(items []catalog.Item, freeText string) []catalog.Item {
	needle := strings.ToLower(strings.TrimSpace(freeText))
	if needle == "" {
		return slices.Clone(items)
	}
	out := make([]catalog.Item, 0, len(items))
	for _, it := range items {
		if it.Contains(needle) {
			out = append(out, it)
		}
	}
	return out
}

// FilterByFacet keeps items whose facet set contains value exactly.
// "All", blank, and the facet's "All X" label keep everything.
func FilterByFacet(items []catalog.Item, facet, value string) []catalog.Item {
	if catalog.IsAll(facet, value) {
		return slices.Clone(items)
	}
	out := make([]catalog.Item, 0, len(items))
	for _, it := range items {
		if it.HasFacetValue(facet, value) {
			out = append(out, it)
		}
	}
	return out
}

// Sort orders items by key, case-insensitively. Equal keys keep input order.
func Sort(items []catalog.Item, key SortKey) []catalog.Item {
	out := slices.Clone(items)
	if out == nil {
		out = []catalog.Item{}
	}
	switch key {
	case NameAscending:
		sortByText(out, catalog.Item.Name, false)
	case NameDescending:
		sortByText(out, catalog.Item.Name, true)
	case CityAscending:
		sortByText(out, catalog.Item.City, false)
	case NewestFirst:
		slices.SortStableFunc(out, func(a, b catalog.Item) int {
			return b.Published().Compare(a.Published())
		})
	}
	return out
}

func sortByText(items []catalog.Item, field func(catalog.Item) string, desc bool) {
	keys := make(map[string]string, len(items))
	lower := func(it catalog.Item) string {
		s := field(it)
		if k, ok := keys[s]; ok {
			return k
		}
		k := strings.ToLower(s)
		keys[s] = k
		return k
	}
	slices.SortStableFunc(items, func(a, b catalog.Item) int {
		c := strings.Compare(lower(a), lower(b))
		if desc {
			return -c
		}
		return c
	})
}

// Paginate returns the first min(visible, len(items)) items. A non-positive
// count yields none.
func Paginate(items []catalog.Item, visible int) []catalog.Item {
	if visible <= 0 {
		return []catalog.Item{}
	}
	return slices.Clone(items[:min(visible, len(items))])
}

// CanShowMore reports whether items are hidden below the fold.
func CanShowMore(visible, total int) bool { return visible < total }

// CanShowLess reports whether the list has been expanded past its initial size.
func CanShowLess(visible, initial int) bool { return visible > initial }

// Selection maps facet names to selected values.
type Selection map[string]string

// Normalized drops identity selections so that "All", blank, and "All X"
// selections compare equal.
func (s Selection) Normalized() Selection {
	out := make(Selection, len(s))
	for name, v := range s {
		if !catalog.IsAll(name, v) {
			out[name] = v
		}
	}
	return out
}

func (s Selection) names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Params describes one listing render.
type Params struct {
	FreeText string
	Facets   Selection
	Sort     SortKey
	Visible  int
	// Initial is the collapsed page size; zero means DefaultInitial.
	Initial int
}

// Page is the rendered subset plus the pagination affordances.
type Page struct {
	Items       []catalog.Item
	Total       int
	Visible     int
	CanShowMore bool
	CanShowLess bool
}

// Filter applies free-text search and then every facet selection.
func Filter(items []catalog.Item, freeText string, facets Selection) []catalog.Item {
	out := Search(items, freeText)
	for _, name := range facets.names() {
		out = FilterByFacet(out, name, facets[name])
	}
	return out
}

// Run composes search, facet filters, sort and pagination in that order.
func Run(items []catalog.Item, p Params) Page {
	initial := p.Initial
	if initial <= 0 {
		initial = DefaultInitial
	}
	sorted := Sort(Filter(items, p.FreeText, p.Facets), p.Sort)
	return Page{
		Items:       Paginate(sorted, p.Visible),
		Total:       len(sorted),
		Visible:     p.Visible,
		CanShowMore: CanShowMore(p.Visible, len(sorted)),
		CanShowLess: CanShowLess(p.Visible, initial),
	}
}
