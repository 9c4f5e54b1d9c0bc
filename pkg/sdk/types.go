package healthbridge

import (
	"github.com/medwayhorizons/healthbridge/internal/domain/catalog"
	"github.com/medwayhorizons/healthbridge/internal/domain/query"
)

// Kind names a catalog collection.
type Kind = catalog.Kind

// Catalog collections.
const (
	Hospitals  = catalog.KindHospitals
	Doctors    = catalog.KindDoctors
	Treatments = catalog.KindTreatments
	Blogs      = catalog.KindBlogs
)

// Record types.
type (
	Record    = catalog.Record
	Hospital  = catalog.Hospital
	Doctor    = catalog.Doctor
	Treatment = catalog.Treatment
	CostRow   = catalog.CostRow
	BlogPost  = catalog.BlogPost
)

// SortKey orders a listing.
type SortKey = query.SortKey

// Sort keys.
const (
	SortNone     = query.Unsorted
	SortNameAsc  = query.NameAscending
	SortNameDesc = query.NameDescending
	SortCityAsc  = query.CityAscending
	SortNewest   = query.NewestFirst
)

// Suggestion is one autocomplete entry.
type Suggestion = query.Suggestion

// Query is one stateless listing request.
type Query struct {
	FreeText string
	// Facets maps facet names ("city", "specialty", ...) to the selected
	// value. "All", blank and the facet's "All X" label select everything.
	Facets map[string]string
	Sort   SortKey
	// Visible is the number of records to return; zero means the initial
	// page size.
	Visible int
}

// Page is one rendered listing.
type Page struct {
	Records     []Record
	Total       int
	Visible     int
	CanShowMore bool
	CanShowLess bool
	// Notices carries user-facing messages, such as a failed collection load.
	Notices []string
}

func toPage(p query.Page, notices []string) Page {
	records := make([]Record, 0, len(p.Items))
	for _, it := range p.Items {
		records = append(records, it.Record())
	}
	return Page{
		Records:     records,
		Total:       p.Total,
		Visible:     p.Visible,
		CanShowMore: p.CanShowMore,
		CanShowLess: p.CanShowLess,
		Notices:     notices,
	}
}
