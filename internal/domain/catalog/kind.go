package catalog

import (
	"fmt"
	"strings"

	"github.com/medwayhorizons/healthbridge/internal/domain"
)

// Kind names a catalog collection.
type Kind string

// Catalog collections.
const (
	KindHospitals  Kind = "hospitals"
	KindDoctors    Kind = "doctors"
	KindTreatments Kind = "treatments"
	KindBlogs      Kind = "blogs"
)

// Kinds lists every catalog collection in display order.
func Kinds() []Kind {
	return []Kind{KindHospitals, KindDoctors, KindTreatments, KindBlogs}
}

// ParseKind converts a collection name to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindHospitals, KindDoctors, KindTreatments, KindBlogs:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownCollection, s)
}

// Collection returns the store collection name.
func (k Kind) Collection() string { return string(k) }

// Label is the singular display label used by autocomplete.
func (k Kind) Label() string {
	switch k {
	case KindHospitals:
		return "Hospital"
	case KindDoctors:
		return "Doctor"
	case KindTreatments:
		return "Treatment"
	case KindBlogs:
		return "Blog"
	}
	return string(k)
}
