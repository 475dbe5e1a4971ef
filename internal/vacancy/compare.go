package vacancy

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

var ErrIncompatibleCurrency = errors.New("incompatible currencies")

// rubleCodes are the two legacy codes for the same currency.
var rubleCodes = map[string]struct{}{"rub": {}, "RUR": {}}

// Compatible reports whether salaries in codes a and b can be compared
// without conversion.
func Compatible(a, b string) bool {
	if a == b {
		return true
	}
	_, ra := rubleCodes[a]
	_, rb := rubleCodes[b]
	return ra && rb
}

// Compare orders a and b by minimum salary. It fails when the currencies
// are not compatible.
func Compare(a, b Vacancy) (int, error) {
	if !Compatible(a.Currency(), b.Currency()) {
		return 0, fmt.Errorf("%w: %s and %s", ErrIncompatibleCurrency, a.Currency(), b.Currency())
	}
	return cmp.Compare(a.MinSalary(), b.MinSalary()), nil
}

// SortBySalary sorts vs in place by minimum salary. The whole collection
// must share one compatible currency; records without a salary count as
// any currency. On error vs is left untouched.
func SortBySalary(vs []Vacancy, desc bool) error {
	var base string
	for _, v := range vs {
		code := v.Currency()
		if code == NotSpecified {
			continue
		}
		if base == "" {
			base = code
			continue
		}
		if !Compatible(base, code) {
			return fmt.Errorf("%w: %s and %s", ErrIncompatibleCurrency, base, code)
		}
	}
	slices.SortStableFunc(vs, func(a, b Vacancy) int {
		if desc {
			return cmp.Compare(b.MinSalary(), a.MinSalary())
		}
		return cmp.Compare(a.MinSalary(), b.MinSalary())
	})
	return nil
}

// Converter turns an amount in a currency code into rubles.
type Converter interface {
	ToRUB(amount float64, code string) (float64, error)
}

// SortConverted sorts a mixed-currency collection by minimum salary in
// rubles. Records with a salary but no currency code cannot be converted;
// they go last in either direction and their count is returned. Any other
// conversion failure leaves vs untouched.
func SortConverted(vs []Vacancy, conv Converter, desc bool) (int, error) {
	keys := make(map[Vacancy]float64, len(vs))
	unconvertible := make(map[Vacancy]bool)
	for _, v := range vs {
		amount := v.MinSalary()
		if amount == 0 {
			keys[v] = 0
			continue
		}
		if v.Currency() == NotSpecified {
			unconvertible[v] = true
			continue
		}
		rub, err := conv.ToRUB(float64(amount), v.Currency())
		if err != nil {
			return 0, fmt.Errorf("convert %s %s: %w", v.Title(), v.Currency(), err)
		}
		keys[v] = rub
	}
	slices.SortStableFunc(vs, func(a, b Vacancy) int {
		if ua, ub := unconvertible[a], unconvertible[b]; ua != ub {
			if ua {
				return 1
			}
			return -1
		}
		if desc {
			return cmp.Compare(keys[b], keys[a])
		}
		return cmp.Compare(keys[a], keys[b])
	})
	return len(unconvertible), nil
}
