package provider

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

func stringValue(values ...any) string {
	for _, value := range values {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		case json.Number:
			return v.String()
		case fmt.Stringer:
			if v.String() != "" {
				return strings.TrimSpace(v.String())
			}
		}
	}
	return ""
}

func mapValue(value any, key string) any {
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	return m[key]
}

// optionsFrom reads a dictionary entry in either of the shapes the providers
// use: a list of {id|code, name|title} objects, or a map of id to title.
func optionsFrom(value any) []Option {
	switch v := value.(type) {
	case []any:
		out := make([]Option, 0, len(v))
		for _, item := range v {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if inUse, ok := entry["in_use"].(bool); ok && !inUse {
				continue
			}
			id := stringValue(entry["id"], entry["code"])
			if id == "" {
				continue
			}
			out = append(out, Option{ID: id, Name: stringValue(entry["name"], entry["title"])})
		}
		return out
	case map[string]any:
		out := make([]Option, 0, len(v))
		for id, title := range v {
			out = append(out, Option{ID: id, Name: stringValue(title, mapValue(title, "title"))})
		}
		sort.Slice(out, func(i, j int) bool {
			a, errA := strconv.Atoi(out[i].ID)
			b, errB := strconv.Atoi(out[j].ID)
			if errA == nil && errB == nil {
				return a < b
			}
			return out[i].ID < out[j].ID
		})
		return out
	default:
		return nil
	}
}
