package models

import (
	"fmt"
	"reflect"
	"strings"
)

// Provider tags the service a raw record was fetched from.
type Provider string

const (
	ProviderHeadHunter Provider = "hh"
	ProviderSuperJob   Provider = "sj"
)

// Providers lists every supported provider in display order.
func Providers() []Provider {
	return []Provider{ProviderHeadHunter, ProviderSuperJob}
}

// ParseProvider accepts the short tags and a few common aliases.
func ParseProvider(value string) (Provider, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "hh", "headhunter", "hh.ru":
		return ProviderHeadHunter, true
	case "sj", "superjob", "superjob.ru":
		return ProviderSuperJob, true
	default:
		return "", false
	}
}

// ParseProviders resolves a comma-separated provider list. An empty list or
// "all" selects every provider; repeats are dropped.
func ParseProviders(list string) ([]Provider, error) {
	var out []Provider
	seen := map[Provider]struct{}{}
	for _, part := range strings.Split(list, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if part == "all" {
			return Providers(), nil
		}
		tag, ok := ParseProvider(part)
		if !ok {
			return nil, fmt.Errorf("unknown provider: %s", part)
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return Providers(), nil
	}
	return out, nil
}

// RawRecord is one listing exactly as the provider returned it.
type RawRecord map[string]any

// Equal reports structural equality of two raw records.
func (r RawRecord) Equal(other RawRecord) bool {
	return reflect.DeepEqual(r, other)
}

// ContainsRecord reports whether records holds a value-equal copy of target.
func ContainsRecord(records []RawRecord, target RawRecord) bool {
	for _, record := range records {
		if record.Equal(target) {
			return true
		}
	}
	return false
}

// AppendUnique appends every incoming record not already present in dst,
// including duplicates inside incoming itself. It returns the grown slice
// and the number of records added.
func AppendUnique(dst []RawRecord, incoming []RawRecord) ([]RawRecord, int) {
	added := 0
	for _, record := range incoming {
		if record == nil {
			continue
		}
		if ContainsRecord(dst, record) {
			continue
		}
		dst = append(dst, record)
		added++
	}
	return dst, added
}
