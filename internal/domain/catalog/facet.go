package catalog

import "strings"

// AllValue is the generic "no filter" facet selection.
const AllValue = "All"

// Facet describes one categorical filter of a collection.
type Facet struct {
	Name     string
	AllLabel string
	Multi    bool
}

// Facet names.
const (
	FacetCity      = "city"
	FacetCountry   = "country"
	FacetSpecialty = "specialty"
	FacetHospital  = "hospital"
	FacetName      = "name"
	FacetCategory  = "category"
)

var allLabels = map[string]string{
	FacetCity:      "All Cities",
	FacetCountry:   "All Countries",
	FacetSpecialty: "All Specialties",
	FacetHospital:  "All Hospitals",
	FacetName:      "All Treatments",
	FacetCategory:  "All Categories",
}

var facetsByKind = map[Kind][]Facet{
	KindHospitals: {
		{Name: FacetCity, AllLabel: allLabels[FacetCity]},
		{Name: FacetCountry, AllLabel: allLabels[FacetCountry]},
		{Name: FacetSpecialty, AllLabel: allLabels[FacetSpecialty], Multi: true},
	},
	KindDoctors: {
		{Name: FacetHospital, AllLabel: allLabels[FacetHospital]},
		{Name: FacetSpecialty, AllLabel: allLabels[FacetSpecialty], Multi: true},
	},
	KindTreatments: {
		{Name: FacetName, AllLabel: allLabels[FacetName]},
		{Name: FacetCategory, AllLabel: allLabels[FacetCategory]},
	},
}

// FacetsFor returns the facets of a collection. Blogs have none.
func FacetsFor(k Kind) []Facet {
	fs := facetsByKind[k]
	out := make([]Facet, len(fs))
	copy(out, fs)
	return out
}

// FacetNames returns every facet name used by any collection.
func FacetNames() []string {
	return []string{FacetCity, FacetCountry, FacetSpecialty, FacetHospital, FacetName, FacetCategory}
}

// AllLabelFor returns the "All X" label of a facet, or AllValue when the
// facet has no dedicated label.
func AllLabelFor(name string) string {
	if l, ok := allLabels[name]; ok {
		return l
	}
	return AllValue
}

// IsAll reports whether value selects every item of the facet: empty,
// the generic "All", or the facet's own "All X" label.
func IsAll(name, value string) bool {
	v := strings.TrimSpace(value)
	return v == "" || v == AllValue || v == AllLabelFor(name)
}

// FacetOptions returns the dropdown contents for a facet: the "All X" label
// followed by the distinct non-empty values in first-seen order.
func FacetOptions(items []Item, f Facet) []string {
	label := f.AllLabel
	if label == "" {
		label = AllLabelFor(f.Name)
	}
	out := []string{label}
	seen := make(map[string]struct{})
	for _, it := range items {
		for _, v := range it.FacetValues(f.Name) {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
