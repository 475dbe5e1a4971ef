package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/jimezsa/vacli/internal/models"
	"github.com/jimezsa/vacli/internal/rates"
	"github.com/jimezsa/vacli/internal/store"
	"github.com/jimezsa/vacli/internal/vacancy"
)

const (
	sortNone       = ""
	sortSalaryAsc  = "salary-asc"
	sortSalaryDesc = "salary-desc"
)

type ListCmd struct {
	Providers  string `help:"Comma-separated providers: hh, sj (default: all)." default:"all"`
	MinSalary  int    `help:"Minimum salary, compared against the lower salary bound."`
	Currency   string `help:"Only vacancies paid in this currency (rub and RUR are the same)."`
	Area       string `help:"Area or town name substring."`
	Keyword    string `help:"Text searched in title, requirements and description."`
	Experience string `help:"Experience text substring."`
	Employment string `help:"Employment type text substring."`
	Sort       string `help:"Sort order: salary-asc or salary-desc." enum:",salary-asc,salary-desc" default:""`
	Convert    bool   `help:"Convert salaries to rubles with the CBR daily rates before sorting."`
	Limit      int    `help:"Maximum vacancies to print (0 = all)."`
	Store      string `help:"Store file path (default from config)."`

	NetworkOptions
	OutputOptions
}

func (l *ListCmd) criteria() vacancy.Criteria {
	return vacancy.Criteria{
		MinSalary:  l.MinSalary,
		Currency:   l.Currency,
		Area:       l.Area,
		Keyword:    l.Keyword,
		Experience: l.Experience,
		Employment: l.Employment,
	}
}

func (l *ListCmd) Run(ctx *Context) error {
	tags, err := models.ParseProviders(l.Providers)
	if err != nil {
		return err
	}
	st, err := openStore(ctx, l.Store)
	if err != nil {
		return err
	}

	criteria := l.criteria()
	predicates := make(map[models.Provider]vacancy.Predicate, len(tags))
	for _, tag := range tags {
		predicates[tag] = criteria.Predicate(tag)
	}

	vacancies, err := st.LoadFiltered(predicates)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w; run `vacli search` first", err)
		}
		return err
	}

	if l.Sort != sortNone {
		if err := l.sortVacancies(ctx, vacancies); err != nil {
			return err
		}
	}
	if l.Limit > 0 && len(vacancies) > l.Limit {
		vacancies = vacancies[:l.Limit]
	}
	ctx.Logger.Debug().Int("matched", len(vacancies)).Str("store", st.Path()).Msg("listing vacancies")
	return writeVacancies(ctx, vacancies, l.OutputOptions)
}

func (l *ListCmd) sortVacancies(ctx *Context, vacancies []vacancy.Vacancy) error {
	desc := l.Sort == sortSalaryDesc
	if !l.Convert {
		if err := vacancy.SortBySalary(vacancies, desc); err != nil {
			return fmt.Errorf("%w; filter with --currency or sort with --convert", err)
		}
		return nil
	}

	deps, err := newClients(ctx, l.NetworkOptions)
	if err != nil {
		return err
	}
	defer deps.Close()

	source := rates.NewSource(deps.fetcher, deps.cache, ctx.Config.RatesURL, ctx.Logger).
		WithRetry(ctx.Config.RetryAttempts, 0)
	daily, err := source.Load(context.Background())
	if err != nil {
		return err
	}
	skipped, err := vacancy.SortConverted(vacancies, daily, desc)
	if err != nil {
		return err
	}
	if skipped > 0 {
		ctx.Logger.Warn().Int("vacancies", skipped).Msg("salary without currency code, sorted last")
	}
	return nil
}
