// Package rawdoc reads untrusted documents as the external store returns them.
//
// Every accessor is total: a missing key, a null, or a value of the wrong
// type reads as the zero value of the requested shape.
package rawdoc

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Doc is one stored document: its store-assigned id, creation time and raw fields.
type Doc struct {
	ID        string
	CreatedAt int64 // unix millis
	Fields    map[string]any
}

var listSeparator = regexp.MustCompile(`[,;]+`)

// String returns the first non-empty string among keys. Numbers are formatted.
func String(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := fields[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		case int64:
			return strconv.FormatInt(v, 10)
		case json.Number:
			return v.String()
		}
	}
	return ""
}

// Strings returns a list of non-empty strings. A single string value is
// treated as a comma or semicolon separated list.
func Strings(fields map[string]any, key string) []string {
	switch v := fields[key].(type) {
	case string:
		return Split(v)
	case []string:
		return compact(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	}
	return nil
}

// Split breaks s on runs of commas and semicolons, trimming and dropping empties.
func Split(s string) []string {
	parts := listSeparator.Split(s, -1)
	return compact(parts)
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Float returns the first numeric value among keys, parsing numeric strings.
// Returns nil when none is present.
func Float(fields map[string]any, keys ...string) *float64 {
	for _, k := range keys {
		switch v := fields[k].(type) {
		case float64:
			return &v
		case int:
			f := float64(v)
			return &f
		case int64:
			f := float64(v)
			return &f
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return &f
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// Time returns the first parseable timestamp among keys. Accepts RFC3339 and
// date-only strings, unix millis, and {seconds, nanoseconds} objects.
func Time(fields map[string]any, keys ...string) time.Time {
	for _, k := range keys {
		switch v := fields[k].(type) {
		case time.Time:
			return v.UTC()
		case string:
			for _, layout := range timeLayouts {
				if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
					return t.UTC()
				}
			}
		case float64:
			return time.UnixMilli(int64(v)).UTC()
		case int64:
			return time.UnixMilli(v).UTC()
		case map[string]any:
			if sec := Float(v, "seconds", "_seconds"); sec != nil {
				nsec := Float(v, "nanoseconds", "_nanoseconds")
				var n int64
				if nsec != nil {
					n = int64(*nsec)
				}
				return time.Unix(int64(*sec), n).UTC()
			}
		}
	}
	return time.Time{}
}

// Image returns the record image URL. image may be a string, a list whose
// first element is used, or an object with a url field.
func Image(fields map[string]any) string {
	if s := String(fields, "imageUrl"); s != "" {
		return s
	}
	switch v := fields["image"].(type) {
	case string:
		return strings.TrimSpace(v)
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return strings.TrimSpace(s)
			}
		}
	case []string:
		if len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
	case map[string]any:
		return String(v, "url")
	}
	return ""
}

// Objects returns the elements of a list value that are objects.
func Objects(fields map[string]any, key string) []map[string]any {
	switch list := fields[key].(type) {
	case []map[string]any:
		return list
	case []any:
		out := make([]map[string]any, 0, len(list))
		for _, e := range list {
			if m, ok := e.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}
