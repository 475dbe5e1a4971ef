package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jimezsa/vacli/internal/export"
	"github.com/jimezsa/vacli/internal/models"
	"github.com/jimezsa/vacli/internal/params"
	"github.com/jimezsa/vacli/internal/provider"
	"github.com/jimezsa/vacli/internal/store"
	"github.com/rs/zerolog"
)

const (
	testDictionaries = `{
  "experience": [{"id": "noExperience", "name": "Нет опыта"}, {"id": "between1And3", "name": "От 1 года до 3 лет"}],
  "employment": [{"id": "full", "name": "Полная занятость"}],
  "schedule": [{"id": "remote", "name": "Удаленная работа"}],
  "currency": [{"code": "RUR", "name": "Рубли", "in_use": true}],
  "vacancy_search_order": [{"id": "publication_time", "name": "по дате"}]
}`
	testAreas = `[
  {"id": "113", "name": "Россия", "areas": [
    {"id": "1", "name": "Москва", "areas": []},
    {"id": "2", "name": "Санкт-Петербург", "areas": []}
  ]}
]`
	storedRecords = `[
  {"id": "1", "name": "Go developer", "url": "https://api.hh.ru/vacancies/1", "alternate_url": "https://hh.ru/vacancy/1",
   "salary": {"from": 150000, "to": null, "currency": "RUR"}, "area": {"name": "Москва"}},
  {"id": 2, "profession": "Backend-разработчик", "link": "https://www.superjob.ru/vakansii/2.html",
   "payment_from": 90000, "payment_to": 0, "currency": "rub", "town": {"title": "Казань"}},
  {"id": "3", "name": "Go lead", "url": "https://api.hh.ru/vacancies/3", "alternate_url": "https://hh.ru/vacancy/3",
   "salary": {"from": 5000, "to": null, "currency": "USD"}, "area": {"name": "Москва"}}
]`
)

type routeFetcher struct {
	routes map[string]string
}

func (f *routeFetcher) Get(_ context.Context, target string, _ url.Values, _ map[string]string) (int, []byte, error) {
	for suffix, body := range f.routes {
		if strings.HasSuffix(target, suffix) {
			return 200, []byte(body), nil
		}
	}
	return 404, nil, nil
}

func testHeadHunter() provider.Provider {
	fetcher := &routeFetcher{routes: map[string]string{
		"/dictionaries": testDictionaries,
		"/areas":        testAreas,
	}}
	return provider.NewHeadHunter(fetcher, models.ClientConfig{}, nil, zerolog.Nop())
}

func testContext(out io.Writer) *Context {
	return &Context{Out: out, Err: io.Discard, Logger: zerolog.Nop()}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name   string
		ctx    *Context
		opts   OutputOptions
		output string
		want   export.Format
	}{
		{name: "json flag wins", ctx: &Context{Out: io.Discard, JSONOutput: true}, opts: OutputOptions{Format: "md"}, output: "out.csv", want: export.FormatJSON},
		{name: "plain flag wins", ctx: &Context{Out: io.Discard, PlainText: true}, output: "out.csv", want: export.FormatTSV},
		{name: "explicit format", ctx: &Context{Out: io.Discard}, opts: OutputOptions{Format: "md"}, want: export.FormatMarkdown},
		{name: "file defaults to csv", ctx: &Context{Out: io.Discard}, output: "out.txt", want: export.FormatCSV},
		{name: "pipe defaults to csv", ctx: &Context{Out: &bytes.Buffer{}}, want: export.FormatCSV},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveFormat(tt.ctx, tt.opts, tt.output)
			if err != nil {
				t.Fatalf("resolveFormat() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("resolveFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseParamOverrides(t *testing.T) {
	got, err := parseParamOverrides([]string{"per_page=50", "hh.experience=noExperience", "sj.town = 4", "hh.ru.area=1"})
	if err != nil {
		t.Fatalf("parseParamOverrides() error = %v", err)
	}
	want := []paramOverride{
		{name: "per_page", value: "50"},
		{provider: models.ProviderHeadHunter, name: "experience", value: "noExperience"},
		{provider: models.ProviderSuperJob, name: "town", value: "4"},
		{provider: models.ProviderHeadHunter, name: "area", value: "1"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("parseParamOverrides() = %+v, want %+v", got, want)
	}

	for _, bad := range []string{"novalue", "=1", "zz.area=1"} {
		if _, err := parseParamOverrides([]string{bad}); err == nil {
			t.Fatalf("parseParamOverrides(%q) error = nil, want error", bad)
		}
	}
}

func TestBuildParams(t *testing.T) {
	hh := testHeadHunter()
	s := &SearchCmd{Query: "golang", Salary: 120000, OnlyWithSalary: true, Area: "москва"}
	overrides, err := parseParamOverrides([]string{"per_page=50", "hh.experience=between1And3", "sj.town=4", "town=4"})
	if err != nil {
		t.Fatalf("parseParamOverrides() error = %v", err)
	}

	set, err := s.buildParams(context.Background(), testContext(io.Discard), hh, overrides)
	if err != nil {
		t.Fatalf("buildParams() error = %v", err)
	}
	checks := map[string]string{
		"text":       "golang",
		"area":       "1",
		"experience": "between1And3",
	}
	for name, want := range checks {
		if got := set.String(name); got != want {
			t.Fatalf("%s = %q, want %q", name, got, want)
		}
	}
	if got := set.Int("per_page"); got != 50 {
		t.Fatalf("per_page = %d, want 50", got)
	}
	if got := set.Int("salary"); got != 120000 {
		t.Fatalf("salary = %d, want 120000", got)
	}
	if value, _ := set.Get("only_with_salary"); value != true {
		t.Fatalf("only_with_salary = %v, want true", value)
	}
}

func TestBuildParamsRejectsUnknownValues(t *testing.T) {
	hh := testHeadHunter()
	tests := []struct {
		name      string
		cmd       SearchCmd
		overrides []string
		wantErr   error
	}{
		{name: "value outside dictionary", cmd: SearchCmd{Query: "go"}, overrides: []string{"hh.experience=forever"}, wantErr: params.ErrNotAllowed},
		{name: "unknown area", cmd: SearchCmd{Query: "go", Area: "Атлантида"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overrides, err := parseParamOverrides(tt.overrides)
			if err != nil {
				t.Fatalf("parseParamOverrides() error = %v", err)
			}
			_, err = tt.cmd.buildParams(context.Background(), testContext(io.Discard), hh, overrides)
			if err == nil {
				t.Fatalf("buildParams() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("buildParams() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildParamsNoValidateSkipsDictionary(t *testing.T) {
	hh := testHeadHunter()
	s := &SearchCmd{Query: "go", NoValidate: true}
	overrides, _ := parseParamOverrides([]string{"hh.experience=forever"})

	set, err := s.buildParams(context.Background(), testContext(io.Discard), hh, overrides)
	if err != nil {
		t.Fatalf("buildParams() error = %v", err)
	}
	if got := set.String("experience"); got != "forever" {
		t.Fatalf("experience = %q, want forever", got)
	}
}

func TestFormatSearchSummary(t *testing.T) {
	records := []models.RawRecord{
		{"url": "https://api.hh.ru/vacancies/1"},
		{"link": "https://www.superjob.ru/vakansii/2.html"},
		{"link": "https://www.superjob.ru/vakansii/3.html"},
		{"title": "stray"},
	}
	got := formatSearchSummary(records)
	want := "summary: vacancies=4 by_provider=hh:1, sj:2, unknown:1"
	if got != want {
		t.Fatalf("formatSearchSummary() = %q, want %q", got, want)
	}
	if got := formatSearchSummary(nil); got != "summary: vacancies=0 by_provider=none" {
		t.Fatalf("formatSearchSummary(nil) = %q", got)
	}
}

func seedStore(t *testing.T) string {
	t.Helper()
	var records []models.RawRecord
	if err := json.Unmarshal([]byte(storedRecords), &records); err != nil {
		t.Fatalf("unmarshal records: %v", err)
	}
	path := filepath.Join(t.TempDir(), "vacancies.json")
	st, err := store.New(path)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	if err := st.Write(records); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return path
}

func listRows(t *testing.T, l *ListCmd) []export.Row {
	t.Helper()
	var out bytes.Buffer
	ctx := testContext(&out)
	ctx.JSONOutput = true
	if err := l.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	var rows []export.Row
	if err := json.Unmarshal(out.Bytes(), &rows); err != nil {
		t.Fatalf("unmarshal output: %v\n%s", err, out.String())
	}
	return rows
}

func rowIDs(rows []export.Row) []string {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids
}

func TestListFiltersAndSorts(t *testing.T) {
	path := seedStore(t)

	rows := listRows(t, &ListCmd{Store: path, Providers: "all", Currency: "rub", Sort: sortSalaryDesc})
	if got, want := rowIDs(rows), []string{"1", "2"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}

	rows = listRows(t, &ListCmd{Store: path, Providers: "hh", Keyword: "lead"})
	if got, want := rowIDs(rows), []string{"3"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}

	rows = listRows(t, &ListCmd{Store: path, Providers: "sj", MinSalary: 100000})
	if len(rows) != 0 {
		t.Fatalf("ids = %v, want none", rowIDs(rows))
	}
}

func TestListMixedCurrencySortFails(t *testing.T) {
	path := seedStore(t)
	l := &ListCmd{Store: path, Providers: "all", Sort: sortSalaryAsc}
	err := l.Run(testContext(io.Discard))
	if err == nil || !strings.Contains(err.Error(), "--convert") {
		t.Fatalf("Run() error = %v, want currency hint", err)
	}
}

func TestListMissingStore(t *testing.T) {
	l := &ListCmd{Store: filepath.Join(t.TempDir(), "absent.json"), Providers: "all"}
	err := l.Run(testContext(io.Discard))
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Run() error = %v, want ErrNotFound", err)
	}
}

func TestCountRecords(t *testing.T) {
	records := []models.RawRecord{
		{"url": "https://api.hh.ru/vacancies/1"},
		{"link": "https://www.superjob.ru/vakansii/2.html"},
		{"title": "stray"},
	}
	got := countRecords(records)
	want := map[string]int{"hh": 1, "sj": 1, "unknown": 1}
	if got.Total != 3 || !reflect.DeepEqual(got.ByProvider, want) {
		t.Fatalf("countRecords() = %+v, want total 3 and %v", got, want)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := map[string]string{
		"":                   "",
		"short":              "*****",
		"v3.r.123456.abcdef": "v3.r**********cdef",
	}
	for in, want := range tests {
		if got := maskSecret(in); got != want {
			t.Fatalf("maskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}

func providerNames(providers []provider.Provider) []models.Provider {
	names := make([]models.Provider, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	return names
}

func TestSelectProvidersSkipsUnconfigured(t *testing.T) {
	fetcher := &routeFetcher{}
	tests := []struct {
		name      string
		providers string
		appID     string
		want      []models.Provider
	}{
		{name: "default without app id", want: []models.Provider{models.ProviderHeadHunter}},
		{name: "default with app id", appID: "v3.key", want: []models.Provider{models.ProviderHeadHunter, models.ProviderSuperJob}},
		{name: "explicit list kept", providers: "sj", want: []models.Provider{models.ProviderSuperJob}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := provider.Registry(fetcher, models.ClientConfig{SuperJobAppID: tt.appID}, nil, zerolog.Nop())
			s := &SearchCmd{Providers: tt.providers}
			got, err := s.selectProviders(testContext(io.Discard), registry)
			if err != nil {
				t.Fatalf("selectProviders() error = %v", err)
			}
			if names := providerNames(got); !reflect.DeepEqual(names, tt.want) {
				t.Fatalf("selectProviders() = %v, want %v", names, tt.want)
			}
		})
	}
}

func TestProviderLoggerTagsProvider(t *testing.T) {
	var buf bytes.Buffer
	ctx := testContext(io.Discard)
	ctx.Logger = zerolog.New(&buf)

	ctx.providerLogger(models.ProviderSuperJob).Info().Msg("collected")
	if !strings.Contains(buf.String(), `"provider":"sj"`) {
		t.Fatalf("log line = %q, want provider field", buf.String())
	}
}
