package provider

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jimezsa/vacli/internal/models"
	"github.com/jimezsa/vacli/internal/params"
	"golang.org/x/text/cases"
)

// Option is one allowed value of an enumerated search filter.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Dictionary maps search parameter names to the values the provider
// currently accepts for them.
type Dictionary struct {
	Provider models.Provider     `json:"provider"`
	Enums    map[string][]Option `json:"enums"`
}

// Params lists the restricted parameter names in sorted order.
func (d *Dictionary) Params() []string {
	names := make([]string, 0, len(d.Enums))
	for name := range d.Enums {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IDs returns the accepted values for param.
func (d *Dictionary) IDs(param string) []string {
	options := d.Enums[param]
	out := make([]string, 0, len(options))
	for _, option := range options {
		out = append(out, option.ID)
	}
	return out
}

// ApplyDictionary restricts every enumerated parameter of set to the
// provider's dictionary values.
func ApplyDictionary(set *params.Set, dict *Dictionary) error {
	if dict == nil {
		return nil
	}
	for _, name := range dict.Params() {
		if _, ok := set.Schema().Field(name); !ok {
			continue
		}
		if err := set.Restrict(name, dict.IDs(name)); err != nil {
			return err
		}
	}
	return nil
}

// Area is a named region or town a search can be limited to.
type Area struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ResolveArea finds an area by name, ignoring case.
func ResolveArea(areas []Area, name string) (Area, bool) {
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(name))
	if want == "" {
		return Area{}, false
	}
	for _, area := range areas {
		if fold.String(area.Name) == want {
			return area, true
		}
	}
	return Area{}, false
}

// walkAreas collects every object found under childKey at any depth of the
// decoded tree. When includeRoots is set the top-level list members count too.
func walkAreas(value any, childKey, nameKey string, includeRoots bool) []Area {
	var out []Area
	var visit func(node any, collect bool)
	visit = func(node any, collect bool) {
		switch v := node.(type) {
		case []any:
			for _, item := range v {
				visit(item, collect)
			}
		case map[string]any:
			if collect {
				id := stringValue(v["id"])
				name := stringValue(v[nameKey])
				if id != "" && name != "" {
					out = append(out, Area{ID: id, Name: name})
				}
			}
			for key, child := range v {
				if _, nested := child.([]any); nested {
					visit(child, key == childKey)
				}
			}
		}
	}
	visit(value, includeRoots)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return dedupeAreas(out)
}

func dedupeAreas(areas []Area) []Area {
	out := areas[:0]
	seen := map[Area]struct{}{}
	for _, area := range areas {
		if _, ok := seen[area]; ok {
			continue
		}
		seen[area] = struct{}{}
		out = append(out, area)
	}
	return out
}

func unknownArea(provider models.Provider, area Area) error {
	return fmt.Errorf("%s: invalid area id %q for %s", provider, area.ID, area.Name)
}
