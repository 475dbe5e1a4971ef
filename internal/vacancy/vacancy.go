// Package vacancy turns raw provider records into a provider-agnostic view
// and orders them by salary.
package vacancy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jimezsa/vacli/internal/models"
)

// NotSpecified replaces every value a raw record does not carry.
const NotSpecified = "not specified"

var ErrUnknownProvider = errors.New("record matches no known provider")

// Vacancy is the normalized view of one raw record. The only
// implementations are *HeadHunter and *SuperJob.
type Vacancy interface {
	Provider() models.Provider
	ID() string
	Title() string
	Area() string
	SalaryFrom() (int, bool)
	SalaryTo() (int, bool)
	MinSalary() int
	Currency() string
	URL() string
	Requirement() string
	Responsibility() string
	Description() string
	Experience() string
	Employment() string
	Raw() models.RawRecord

	sealed()
}

// Classify reports which provider a raw record came from, judged by the
// host of its links.
func Classify(raw models.RawRecord) (models.Provider, bool) {
	if raw == nil {
		return "", false
	}
	for _, key := range []string{"url", "alternate_url"} {
		if link, ok := raw[key].(string); ok && strings.Contains(link, "hh.ru") {
			return models.ProviderHeadHunter, true
		}
	}
	if link, ok := raw["link"].(string); ok && strings.Contains(link, "superjob.ru") {
		return models.ProviderSuperJob, true
	}
	return "", false
}

// FromRaw builds the variant matching the record's provider.
func FromRaw(raw models.RawRecord) (Vacancy, error) {
	provider, ok := Classify(raw)
	if !ok {
		return nil, ErrUnknownProvider
	}
	switch provider {
	case models.ProviderHeadHunter:
		return newHeadHunter(raw), nil
	case models.ProviderSuperJob:
		return newSuperJob(raw), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
}

// FromRawAll normalizes every classifiable record and reports how many were
// skipped.
func FromRawAll(records []models.RawRecord) ([]Vacancy, int) {
	out := make([]Vacancy, 0, len(records))
	skipped := 0
	for _, raw := range records {
		v, err := FromRaw(raw)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, v)
	}
	return out, skipped
}

// minSalary is 0 with no bound, the single bound when only one is present
// and the smaller one otherwise.
func minSalary(from int, hasFrom bool, to int, hasTo bool) int {
	switch {
	case hasFrom && hasTo:
		return min(from, to)
	case hasFrom:
		return from
	case hasTo:
		return to
	default:
		return 0
	}
}

// Salary renders the salary range for display.
func Salary(v Vacancy) string {
	from, hasFrom := v.SalaryFrom()
	to, hasTo := v.SalaryTo()
	currency := v.Currency()
	switch {
	case hasFrom && hasTo:
		return fmt.Sprintf("%d - %d %s", from, to, currency)
	case hasFrom:
		return fmt.Sprintf("from %d %s", from, currency)
	case hasTo:
		return fmt.Sprintf("up to %d %s", to, currency)
	default:
		return NotSpecified
	}
}

func textOr(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return NotSpecified
	}
	return value
}

// stringAt walks keys through nested objects. The top level is usually a
// models.RawRecord, which a map[string]any assertion does not match.
func stringAt(value any, keys ...string) string {
	for _, key := range keys {
		switch m := value.(type) {
		case models.RawRecord:
			value = m[key]
		case map[string]any:
			value = m[key]
		default:
			return ""
		}
	}
	s, _ := value.(string)
	return s
}

// boundAt reads a salary bound. Zero and null both mean absent.
func boundAt(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		if v > 0 {
			return int(v), true
		}
	case int:
		if v > 0 {
			return v, true
		}
	}
	return 0, false
}

func idOf(raw models.RawRecord) string {
	switch v := raw["id"].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}
