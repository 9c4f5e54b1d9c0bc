// Package csvimport turns admin CSV uploads into raw catalog documents.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/medwayhorizons/healthbridge/internal/domain"
	"github.com/medwayhorizons/healthbridge/internal/domain/catalog"
	"github.com/medwayhorizons/healthbridge/internal/domain/rawdoc"
)

// DefaultMaxRows caps an upload when no limit is configured.
const DefaultMaxRows = 500

// Row is one parsed data row.
type Row struct {
	// Line is the 1-based line in the file; the header is line 1.
	Line   int
	Fields map[string]any
}

var templates = map[catalog.Kind][]string{
	catalog.KindTreatments: {"name", "description", "category", "keywords", "pricing", "duration", "imageUrl"},
	catalog.KindHospitals:  {"name", "city", "country", "specialties", "image"},
	catalog.KindDoctors:    {"name", "hospital", "specialty", "bio", "imageUrl"},
	catalog.KindBlogs:      {"title", "excerpt", "content", "imageUrl", "publishedDate"},
}

// Template returns the required header columns of a collection.
func Template(k catalog.Kind) []string {
	cols := templates[k]
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}

// Parse reads a CSV with a header row and maps each row to the stored shape
// of kind. Blank lines are skipped; keys and values are trimmed. now stamps
// blog posts whose date is missing or unparsable.
func Parse(k catalog.Kind, r io.Reader, maxRows int, now time.Time) ([]Row, error) {
	need, ok := templates[k]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCollection, k)
	}
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file, required columns: %s", domain.ErrInvalidImport, strings.Join(need, ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", domain.ErrInvalidImport, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	if missing := missingColumns(header, need); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s, required: %s",
			domain.ErrInvalidImport, strings.Join(missing, ", "), strings.Join(need, ", "))
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImport, err)
		}
		line, _ := cr.FieldPos(0)
		fields, blank := toFields(header, rec)
		if blank {
			continue
		}
		if len(rows) == maxRows {
			return nil, fmt.Errorf("%w: more than %d rows", domain.ErrInvalidImport, maxRows)
		}
		rows = append(rows, Row{Line: line, Fields: mapRow(k, fields, now)})
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows, required columns: %s", domain.ErrInvalidImport, strings.Join(need, ", "))
	}
	return rows, nil
}

func missingColumns(header, need []string) []string {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	var missing []string
	for _, n := range need {
		if !have[n] {
			missing = append(missing, n)
		}
	}
	return missing
}

func toFields(header, rec []string) (map[string]any, bool) {
	fields := make(map[string]any, len(header))
	blank := true
	for i, key := range header {
		if key == "" {
			continue
		}
		v := ""
		if i < len(rec) {
			v = strings.TrimSpace(rec[i])
		}
		if v != "" {
			blank = false
		}
		fields[key] = v
	}
	return fields, blank
}

func mapRow(k catalog.Kind, row map[string]any, now time.Time) map[string]any {
	switch k {
	case catalog.KindHospitals:
		if s := rawdoc.String(row, "specialties"); s != "" {
			row["specialties"] = rawdoc.Split(s)
		}
		if img := rawdoc.String(row, "imageUrl"); img != "" && rawdoc.String(row, "image") == "" {
			row["image"] = img
			delete(row, "imageUrl")
		}
	case catalog.KindTreatments:
		if s := rawdoc.String(row, "pricing"); s != "" {
			row["pricing"] = parsePricing(s)
		}
	case catalog.KindDoctors:
		if s := rawdoc.String(row, "specialty"); s != "" {
			row["specialty"] = rawdoc.Split(s)
		}
	case catalog.KindBlogs:
		row["publishedDate"] = parsePublished(rawdoc.String(row, "publishedDate"), now).Format(time.RFC3339)
	}
	return row
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// parsePricing reads the leading number of s. Zero or no number is nil.
func parsePricing(s string) any {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return nil
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || f == 0 {
		return nil
	}
	return f
}

// parsePublished reads day-first dates when s contains a slash and guesses
// the layout otherwise.
func parsePublished(s string, now time.Time) time.Time {
	if s == "" {
		return now.UTC()
	}
	if strings.Contains(s, "/") {
		if t, err := time.Parse("2/1/2006", s); err == nil {
			return t.UTC()
		}
		return now.UTC()
	}
	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return t.UTC()
	}
	return now.UTC()
}
