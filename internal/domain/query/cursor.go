package query

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/medwayhorizons/healthbridge/internal/domain/catalog"
)

// Cursor owns the visible count of one listing and resets it whenever the
// free text, a facet selection, or the sort key changes.
// Not safe for concurrent use.
type Cursor struct {
	initial   int
	increment int
	visible   int
	freeText  string
	facets    Selection
	sort      SortKey
}

// NewCursor creates a cursor showing the initial page. Non-positive sizes
// fall back to the listing defaults.
func NewCursor(initial, increment int) *Cursor {
	if initial <= 0 {
		initial = DefaultInitial
	}
	if increment <= 0 {
		increment = DefaultIncrement
	}
	return &Cursor{
		initial:   initial,
		increment: increment,
		visible:   initial,
		facets:    Selection{},
		sort:      Unsorted,
	}
}

// Visible returns the current visible count.
func (c *Cursor) Visible() int { return c.visible }

// Initial returns the collapsed page size.
func (c *Cursor) Initial() int { return c.initial }

// SetFreeText changes the search text.
func (c *Cursor) SetFreeText(s string) {
	if s == c.freeText {
		return
	}
	c.freeText = s
	c.reset()
}

// SetFacet changes one facet selection. Identity values clear the facet.
func (c *Cursor) SetFacet(name, value string) {
	cur, had := c.facets[name]
	if catalog.IsAll(name, value) {
		if !had {
			return
		}
		delete(c.facets, name)
		c.reset()
		return
	}
	if had && cur == value {
		return
	}
	c.facets[name] = value
	c.reset()
}

// SetFacets replaces every facet selection.
func (c *Cursor) SetFacets(s Selection) {
	next := s.Normalized()
	if maps.Equal(next, c.facets) {
		return
	}
	c.facets = next
	c.reset()
}

// SetSort changes the ordering.
func (c *Cursor) SetSort(k SortKey) {
	if k == "" {
		k = Unsorted
	}
	if k == c.sort {
		return
	}
	c.sort = k
	c.reset()
}

// ShowMore expands the list by one increment.
func (c *Cursor) ShowMore() { c.visible += c.increment }

// ShowLess collapses the list back to the initial size.
func (c *Cursor) ShowLess() { c.visible = c.initial }

func (c *Cursor) reset() { c.visible = c.initial }

// Params returns the current selections as engine parameters.
func (c *Cursor) Params() Params {
	return Params{
		FreeText: c.freeText,
		Facets:   maps.Clone(c.facets),
		Sort:     c.sort,
		Visible:  c.visible,
		Initial:  c.initial,
	}
}

// Apply renders items with the current selections.
func (c *Cursor) Apply(items []catalog.Item) Page {
	return Run(items, c.Params())
}

// Fingerprint identifies the current free text, facets and sort. Two
// cursors with equal fingerprints filter and order identically.
func (c *Cursor) Fingerprint() string {
	var b strings.Builder
	b.WriteString(c.freeText)
	b.WriteByte(0)
	for _, name := range c.facets.names() {
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(c.facets[name])
		b.WriteByte(0)
	}
	b.WriteString(string(c.sort))
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}

// Token serializes the visible count bound to the current fingerprint.
func (c *Cursor) Token() string {
	raw := fmt.Sprintf("v1:%s:%d", c.Fingerprint(), c.visible)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// Resume restores the visible count from a token issued for the same
// selections. A token that is malformed, was issued for other selections,
// or holds a count off the page grid leaves the cursor at the initial size.
// Reports whether the count was restored.
func (c *Cursor) Resume(token string) bool {
	c.reset()
	if token == "" {
		return false
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return false
	}
	parts := strings.Split(string(raw), ":")
	if len(parts) != 3 || parts[0] != "v1" || parts[1] != c.Fingerprint() {
		return false
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < c.initial || (n-c.initial)%c.increment != 0 {
		return false
	}
	c.visible = n
	return true
}
