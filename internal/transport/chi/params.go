package chi

import (
	"fmt"
	"net/url"

	"github.com/oapi-codegen/runtime"

	"github.com/medwayhorizons/healthbridge/internal/domain/catalog"
	"github.com/medwayhorizons/healthbridge/internal/domain/query"
	cataloguc "github.com/medwayhorizons/healthbridge/internal/usecase/catalog"
)

// browseParams are the query parameters of GET /catalog/{kind}.
type browseParams struct {
	Q       *string
	Sort    *string
	Cursor  *string
	Page    *string
	Visible *int
	Facets  query.Selection
}

func bindOptional(name string, q url.Values, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, q, dest); err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	return nil
}

func bindBrowseParams(kind catalog.Kind, q url.Values) (browseParams, error) {
	var p browseParams
	binds := []struct {
		name string
		dest any
	}{
		{"q", &p.Q},
		{"sort", &p.Sort},
		{"cursor", &p.Cursor},
		{"page", &p.Page},
		{"visible", &p.Visible},
	}
	for _, b := range binds {
		if err := bindOptional(b.name, q, b.dest); err != nil {
			return browseParams{}, err
		}
	}
	if p.Visible != nil {
		if *p.Visible < 1 {
			return browseParams{}, fmt.Errorf("invalid visible: must be at least 1")
		}
		if p.Page != nil || p.Cursor != nil {
			return browseParams{}, fmt.Errorf("visible cannot be combined with page or cursor")
		}
	}

	p.Facets = query.Selection{}
	for _, f := range catalog.FacetsFor(kind) {
		if v := q.Get(f.Name); v != "" {
			p.Facets[f.Name] = v
		}
	}
	return p, nil
}

func (p browseParams) sortKey() (query.SortKey, error) {
	return query.ParseSortKey(deref(p.Sort))
}

func (p browseParams) move() (cataloguc.PageMove, error) {
	return cataloguc.ParsePageMove(deref(p.Page))
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
