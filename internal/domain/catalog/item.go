package catalog

import (
	"strings"
	"time"
)

// Item is the normalized, read-only view of one record that the query engine
// operates on.
type Item struct {
	id        string
	kind      Kind
	name      string
	city      string
	published time.Time
	text      string
	haystack  string
	facets    map[string][]string
	record    Record
}

// ItemSpec carries the inputs of NewItem.
type ItemSpec struct {
	ID        string
	Kind      Kind
	Name      string
	City      string
	Published time.Time
	// Text holds the searchable fields; they are joined with newlines.
	Text   []string
	Facets map[string][]string
	Record Record
}

// NewItem builds an Item. Facet values are copied and blank values dropped.
func NewItem(spec ItemSpec) Item {
	text := strings.Join(spec.Text, "\n")
	var facets map[string][]string
	if len(spec.Facets) > 0 {
		facets = make(map[string][]string, len(spec.Facets))
		for name, values := range spec.Facets {
			kept := make([]string, 0, len(values))
			for _, v := range values {
				if strings.TrimSpace(v) != "" {
					kept = append(kept, v)
				}
			}
			facets[name] = kept
		}
	}
	return Item{
		id:        spec.ID,
		kind:      spec.Kind,
		name:      spec.Name,
		city:      spec.City,
		published: spec.Published,
		text:      text,
		haystack:  strings.ToLower(text),
		facets:    facets,
		record:    spec.Record,
	}
}

// ID returns the store-assigned identifier.
func (i Item) ID() string { return i.id }

// Kind returns the collection the item belongs to.
func (i Item) Kind() Kind { return i.kind }

// Name returns the display label (title for blog posts).
func (i Item) Name() string { return i.name }

// City returns the city used by city ordering. Empty for non-hospitals.
func (i Item) City() string { return i.city }

// Published returns the publication time. Zero unless the item is a blog post.
func (i Item) Published() time.Time { return i.published }

// SearchableText returns the text free-text search matches against.
func (i Item) SearchableText() string { return i.text }

// Contains reports whether the searchable text contains needle, which must
// already be lower-cased.
func (i Item) Contains(needle string) bool {
	return strings.Contains(i.haystack, needle)
}

// FacetValues returns the values of a facet. A missing facet is an empty set.
func (i Item) FacetValues(name string) []string { return i.facets[name] }

// HasFacetValue reports whether the facet set contains value exactly.
func (i Item) HasFacetValue(name, value string) bool {
	for _, v := range i.facets[name] {
		if v == value {
			return true
		}
	}
	return false
}

// Record returns the typed record the item was derived from. Nil for items
// built directly from a spec without one.
func (i Item) Record() Record { return i.record }
