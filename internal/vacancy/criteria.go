package vacancy

import (
	"strings"

	"github.com/jimezsa/vacli/internal/models"
)

// Predicate decides whether a stored raw record should be shown.
type Predicate func(models.RawRecord) bool

// Criteria filters stored vacancies. Zero fields match everything; text
// fields match case-insensitively as substrings.
type Criteria struct {
	MinSalary  int
	Currency   string
	Area       string
	Keyword    string
	Experience string
	Employment string
}

func (c Criteria) Empty() bool {
	return c == Criteria{}
}

// Predicate builds a filter that accepts only records of provider that
// satisfy every set criterion.
func (c Criteria) Predicate(provider models.Provider) Predicate {
	return func(raw models.RawRecord) bool {
		v, err := FromRaw(raw)
		if err != nil || v.Provider() != provider {
			return false
		}
		return c.Match(v)
	}
}

// Match applies the criteria to a normalized vacancy.
func (c Criteria) Match(v Vacancy) bool {
	if c.MinSalary > 0 && v.MinSalary() < c.MinSalary {
		return false
	}
	if c.Currency != "" && !Compatible(v.Currency(), c.Currency) {
		return false
	}
	if !containsFold(v.Area(), c.Area) {
		return false
	}
	if !containsFold(v.Experience(), c.Experience) {
		return false
	}
	if !containsFold(v.Employment(), c.Employment) {
		return false
	}
	if c.Keyword != "" {
		for _, text := range []string{v.Title(), v.Requirement(), v.Responsibility(), v.Description()} {
			if containsFold(text, c.Keyword) {
				return true
			}
		}
		return false
	}
	return true
}

func containsFold(text, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(needle))
}
