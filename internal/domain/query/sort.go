package query

import (
	"fmt"
	"strings"
)

// SortKey selects the listing order.
type SortKey string

// Sort keys.
const (
	Unsorted       SortKey = "none"
	NameAscending  SortKey = "name_asc"
	NameDescending SortKey = "name_desc"
	CityAscending  SortKey = "city_asc"
	NewestFirst    SortKey = "newest"
)

// ParseSortKey converts a wire value to a SortKey. Empty means Unsorted.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return Unsorted, nil
	case Unsorted, NameAscending, NameDescending, CityAscending, NewestFirst:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q (allowed: name_asc, name_desc, city_asc, newest, none)", s)
}

// String returns the wire form.
func (k SortKey) String() string { return string(k) }
