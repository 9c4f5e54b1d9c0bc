package query

import (
	"strings"

	"github.com/medwayhorizons/healthbridge/internal/domain/catalog"
)

// Suggestion is one autocomplete entry.
type Suggestion struct {
	Kind  catalog.Kind `json:"kind"`
	ID    string       `json:"id"`
	Value string       `json:"value"`
	Label string       `json:"label"`
}

// Suggest matches text against item names, case-insensitively, and returns
// labelled entries grouped in the order of groups. Blank text yields none;
// limit <= 0 means unlimited.
func Suggest(groups [][]catalog.Item, text string, limit int) []Suggestion {
	needle := strings.ToLower(strings.TrimSpace(text))
	out := []Suggestion{}
	if needle == "" {
		return out
	}
	for _, items := range groups {
		for _, it := range items {
			if it.Name() == "" || !strings.Contains(strings.ToLower(it.Name()), needle) {
				continue
			}
			out = append(out, Suggestion{
				Kind:  it.Kind(),
				ID:    it.ID(),
				Value: it.Name(),
				Label: it.Kind().Label() + ": " + it.Name(),
			})
			if limit > 0 && len(out) == limit {
				return out
			}
		}
	}
	return out
}
