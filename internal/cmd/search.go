package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/jimezsa/vacli/internal/models"
	"github.com/jimezsa/vacli/internal/params"
	"github.com/jimezsa/vacli/internal/provider"
	"github.com/jimezsa/vacli/internal/session"
	"github.com/jimezsa/vacli/internal/vacancy"
)

type SearchCmd struct {
	Query          string   `arg:"" optional:"" help:"Search text (HeadHunter text, SuperJob keyword)."`
	Providers      string   `help:"Comma-separated providers: hh, sj (default: every configured provider)."`
	Quantity       int      `short:"n" help:"Vacancies to collect per provider, 0-500 (default from config)."`
	Area           string   `help:"Area or town name, resolved through each provider's area list."`
	Salary         int      `help:"Salary filter (HeadHunter salary, SuperJob payment_from)."`
	OnlyWithSalary bool     `help:"HeadHunter: only vacancies with a salary."`
	Param          []string `short:"p" help:"Provider parameter as [hh.|sj.]name=value; repeatable." sep:"none"`
	NoValidate     bool     `help:"Skip dictionary validation of enumerated parameters."`
	Replace        bool     `help:"Replace the stored vacancies instead of appending."`
	NoStore        bool     `help:"Print results without saving them."`
	Store          string   `help:"Store file path (default from config)."`
	Quiet          bool     `help:"Do not print the collected vacancies."`

	NetworkOptions
	OutputOptions
}

// commonParams maps the shared search flags onto each provider's schema.
var commonParams = map[models.Provider]struct {
	text, salary, withSalary string
}{
	models.ProviderHeadHunter: {text: "text", salary: "salary", withSalary: "only_with_salary"},
	models.ProviderSuperJob:   {text: "keyword", salary: "payment_from"},
}

type paramOverride struct {
	provider models.Provider
	name     string
	value    string
}

type providerFailure struct {
	provider models.Provider
	err      error
}

func (s *SearchCmd) Run(ctx *Context) error {
	quantity := defaultInt(s.Quantity, ctx.Config.DefaultQuantity)
	if quantity < 0 || quantity > provider.MaxQuantity {
		return fmt.Errorf("--quantity must be between 0 and %d", provider.MaxQuantity)
	}
	overrides, err := parseParamOverrides(s.Param)
	if err != nil {
		return err
	}

	deps, err := newClients(ctx, s.NetworkOptions)
	if err != nil {
		return err
	}
	defer deps.Close()

	selected, err := s.selectProviders(ctx, deps.registry)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sess := session.New(ctx.Logger)
	stopIndicator := startProgressIndicator(ctx, "Collecting")
	var failures []providerFailure
	for _, p := range selected {
		set, err := s.buildParams(runCtx, ctx, p, overrides)
		if err == nil {
			ctx.providerLogger(p.Name()).Debug().Str("params", set.Describe()).Msg("search parameters")
			_, err = sess.Collect(runCtx, p, set, quantity)
		}
		if err != nil {
			failures = append(failures, providerFailure{provider: p.Name(), err: err})
			if errors.Is(err, context.Canceled) {
				break
			}
		}
	}
	if stopIndicator != nil {
		stopIndicator()
	}
	reportFailures(ctx, failures)

	records := sess.Snapshot()
	if !s.NoStore {
		if err := s.persist(ctx, records); err != nil {
			return err
		}
	}

	if !s.Quiet {
		vacancies, _ := vacancy.FromRawAll(records)
		if err := writeVacancies(ctx, vacancies, s.OutputOptions); err != nil {
			return err
		}
	}
	printSearchSummary(ctx, records)

	if len(failures) > 0 {
		return fmt.Errorf("search failed for %s", failedProviders(failures))
	}
	return nil
}

// selectProviders honors an explicit --providers list as given. Without
// one, providers lacking credentials are skipped with a warning.
func (s *SearchCmd) selectProviders(ctx *Context, registry map[models.Provider]provider.Provider) ([]provider.Provider, error) {
	selected, err := provider.Select(registry, s.Providers)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(s.Providers) != "" {
		return selected, nil
	}
	usable, skipped := provider.Usable(selected)
	for _, p := range selected {
		if reason, ok := skipped[p.Name()]; ok {
			ctx.providerLogger(p.Name()).Warn().Err(reason).Msg("provider skipped")
			if ctx.UI != nil {
				ctx.UI.Warnf("Skipping %s: %v (set it in config or VACLI_SJ_APP_ID)", p.Name(), reason)
			}
		}
	}
	if len(usable) == 0 {
		return nil, fmt.Errorf("no configured providers")
	}
	return usable, nil
}

// buildParams assembles a validated parameter set for p from the flags.
func (s *SearchCmd) buildParams(runCtx context.Context, ctx *Context, p provider.Provider, overrides []paramOverride) (*params.Set, error) {
	set := p.NewParams()
	names := commonParams[p.Name()]

	if !s.NoValidate {
		dict, err := p.Dictionary(runCtx)
		if err != nil {
			ctx.providerLogger(p.Name()).Warn().Err(err).Msg("dictionary unavailable, enumerated parameters not validated")
		} else if err := provider.ApplyDictionary(set, dict); err != nil {
			return nil, err
		}
	}

	if query := strings.TrimSpace(s.Query); query != "" {
		if err := set.Set(names.text, query); err != nil {
			return nil, err
		}
	}
	if s.Salary > 0 {
		if err := set.Set(names.salary, s.Salary); err != nil {
			return nil, err
		}
	}
	if s.OnlyWithSalary && names.withSalary != "" {
		if err := set.Set(names.withSalary, true); err != nil {
			return nil, err
		}
	}
	if area := strings.TrimSpace(s.Area); area != "" {
		areas, err := p.Areas(runCtx)
		if err != nil {
			return nil, fmt.Errorf("load areas: %w", err)
		}
		found, ok := provider.ResolveArea(areas, area)
		if !ok {
			return nil, fmt.Errorf("area %q not found", area)
		}
		if err := p.ApplyArea(set, found); err != nil {
			return nil, err
		}
	}

	for _, override := range overrides {
		if override.provider != "" && override.provider != p.Name() {
			continue
		}
		if override.provider == "" {
			if _, ok := p.Schema().Field(override.name); !ok {
				continue
			}
		}
		if err := set.SetString(override.name, override.value); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func (s *SearchCmd) persist(ctx *Context, records []models.RawRecord) error {
	st, err := openStore(ctx, s.Store)
	if err != nil {
		return err
	}
	if s.Replace {
		if err := st.Write(records); err != nil {
			return fmt.Errorf("write store: %w", err)
		}
		ctx.Logger.Info().Str("path", st.Path()).Int("total", len(records)).Msg("store replaced")
		return nil
	}
	stats, err := st.Append(records)
	if err != nil {
		return fmt.Errorf("append store: %w", err)
	}
	ctx.Logger.Info().Str("path", st.Path()).Int("added", stats.Added).Int("total", stats.Total).Msg("store updated")
	return nil
}

// parseParamOverrides reads "name=value" and "provider.name=value" pairs.
func parseParamOverrides(values []string) ([]paramOverride, error) {
	out := make([]paramOverride, 0, len(values))
	for _, raw := range values {
		key, value, ok := strings.Cut(raw, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q: want name=value", raw)
		}
		override := paramOverride{name: key, value: strings.TrimSpace(value)}
		// Parameter names never contain dots; provider aliases may ("hh.ru.area").
		if dot := strings.LastIndex(key, "."); dot >= 0 {
			prefix, name := key[:dot], key[dot+1:]
			tag, known := models.ParseProvider(prefix)
			if !known {
				return nil, fmt.Errorf("invalid --param %q: unknown provider %q", raw, prefix)
			}
			override.provider = tag
			override.name = name
		}
		out = append(out, override)
	}
	return out, nil
}

func reportFailures(ctx *Context, failures []providerFailure) {
	if ctx == nil || ctx.UI == nil || len(failures) == 0 {
		return
	}
	ctx.UI.Warnf("Provider errors:")
	for _, failure := range failures {
		ctx.UI.Warnf("  %s: %v", failure.provider, failure.err)
	}
}

func failedProviders(failures []providerFailure) string {
	names := make([]string, 0, len(failures))
	for _, failure := range failures {
		names = append(names, string(failure.provider))
	}
	return strings.Join(names, ", ")
}

func printSearchSummary(ctx *Context, records []models.RawRecord) {
	if ctx == nil || ctx.Err == nil {
		return
	}
	_, _ = fmt.Fprintf(ctx.Err, "%s\n", formatSearchSummary(records))
}

func formatSearchSummary(records []models.RawRecord) string {
	counts := map[string]int{}
	for _, raw := range records {
		tag, ok := vacancy.Classify(raw)
		if !ok {
			tag = "unknown"
		}
		counts[string(tag)]++
	}
	if len(counts) == 0 {
		return "summary: vacancies=0 by_provider=none"
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s:%d", name, counts[name]))
	}
	return fmt.Sprintf("summary: vacancies=%d by_provider=%s", len(records), strings.Join(parts, ", "))
}
