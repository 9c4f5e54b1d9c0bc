package healthbridge

import (
	"context"
	"fmt"
	"time"

	"github.com/medwayhorizons/healthbridge/internal/domain"
	"github.com/medwayhorizons/healthbridge/internal/domain/catalog"
	"github.com/medwayhorizons/healthbridge/internal/domain/query"
)

// CatalogService serves listings of one collection.
type CatalogService struct {
	kind Kind
	svc  catalogUseCase
	obs  *observer
}

func (s *CatalogService) resolve() (catalog.Kind, error) {
	k, err := catalog.ParseKind(string(s.kind))
	if err != nil {
		return "", fmt.Errorf("healthbridge: %w", err)
	}
	return k, nil
}

// Query renders one listing. A collection that fails to load yields an
// empty page with a notice, not an error.
func (s *CatalogService) Query(ctx context.Context, q Query) (page Page, err error) {
	start := time.Now()
	defer func() {
		s.obs.observe(opEvent{op: "catalog.query", collection: s.kind, start: start, err: err, notices: page.Notices})
	}()

	kind, err := s.resolve()
	if err != nil {
		return Page{}, err
	}
	visible := q.Visible
	if visible <= 0 {
		visible, _ = s.svc.PageSizes()
	}

	ctx, n := domain.NewContextWithNotices(ctx)
	p := s.svc.Query(ctx, kind, query.Params{
		FreeText: q.FreeText,
		Facets:   query.Selection(q.Facets).Normalized(),
		Sort:     q.Sort,
		Visible:  visible,
	})
	return toPage(p, n.List()), nil
}

// Cursor loads the collection once and returns a stateful listing over
// that snapshot.
func (s *CatalogService) Cursor(ctx context.Context) (cur *Cursor, err error) {
	start := time.Now()
	var notices []string
	defer func() {
		s.obs.observe(opEvent{op: "catalog.cursor", collection: s.kind, start: start, err: err, notices: notices})
	}()

	kind, err := s.resolve()
	if err != nil {
		return nil, err
	}
	ctx, n := domain.NewContextWithNotices(ctx)
	items := s.svc.Load(ctx, kind)
	notices = n.List()
	initial, increment := s.svc.PageSizes()
	return &Cursor{
		cur:     query.NewCursor(initial, increment),
		items:   items,
		notices: notices,
	}, nil
}

// Get returns one record by id.
func (s *CatalogService) Get(ctx context.Context, id string) (rec Record, err error) {
	start := time.Now()
	defer func() { s.obs.observe(opEvent{op: "catalog.get", collection: s.kind, start: start, err: err}) }()

	kind, err := s.resolve()
	if err != nil {
		return nil, err
	}
	rec, err = s.svc.Get(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("healthbridge: %w", err)
	}
	return rec, nil
}

// FacetOptions holds the dropdown options of every facet of a collection.
type FacetOptions struct {
	// Options maps facet names to the "All X" label followed by the
	// distinct values in first-seen order.
	Options map[string][]string
	// Notices carries user-facing messages, such as a failed collection load.
	Notices []string
}

// Facets returns the dropdown options of every facet of the collection.
// A collection that fails to load yields bare "All X" options with a notice.
func (s *CatalogService) Facets(ctx context.Context) (out FacetOptions, err error) {
	start := time.Now()
	defer func() {
		s.obs.observe(opEvent{op: "catalog.facets", collection: s.kind, start: start, err: err, notices: out.Notices})
	}()

	kind, err := s.resolve()
	if err != nil {
		return FacetOptions{}, err
	}
	ctx, n := domain.NewContextWithNotices(ctx)
	opts := s.svc.Facets(ctx, kind)
	return FacetOptions{Options: opts, Notices: n.List()}, nil
}

// Cursor is a listing bound to one collection snapshot. Changing the free
// text, a facet or the sort collapses it back to the initial page.
// Not safe for concurrent use.
type Cursor struct {
	cur     *query.Cursor
	items   []catalog.Item
	notices []string
}

// SetFreeText changes the search text.
func (c *Cursor) SetFreeText(s string) { c.cur.SetFreeText(s) }

// SetFacet selects one facet value; "All" or blank clears it.
func (c *Cursor) SetFacet(name, value string) { c.cur.SetFacet(name, value) }

// SetSort changes the ordering.
func (c *Cursor) SetSort(k SortKey) { c.cur.SetSort(k) }

// ShowMore expands the listing by one increment.
func (c *Cursor) ShowMore() { c.cur.ShowMore() }

// ShowLess collapses the listing to the initial page.
func (c *Cursor) ShowLess() { c.cur.ShowLess() }

// Visible returns the current visible count.
func (c *Cursor) Visible() int { return c.cur.Visible() }

// Token serializes the visible count for the current selections.
func (c *Cursor) Token() string { return c.cur.Token() }

// Resume restores the visible count from a Token issued for the same
// selections.
func (c *Cursor) Resume(token string) bool { return c.cur.Resume(token) }

// Page renders the snapshot with the current selections.
func (c *Cursor) Page() Page {
	return toPage(c.cur.Apply(c.items), c.notices)
}
