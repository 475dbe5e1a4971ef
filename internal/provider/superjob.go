package provider

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jimezsa/vacli/internal/cache"
	"github.com/jimezsa/vacli/internal/models"
	"github.com/jimezsa/vacli/internal/network"
	"github.com/jimezsa/vacli/internal/params"
	"github.com/rs/zerolog"
)

const (
	DefaultSuperJobURL = "https://api.superjob.ru/2.0"

	// superJobDefaultCount is the page size the API falls back to when
	// count is zero.
	superJobDefaultCount = 20
)

var superJobSchema = params.NewSchema(string(models.ProviderSuperJob),
	params.Field{Name: "page", Kind: params.KindInt, Default: 0},
	params.Field{Name: "count", Kind: params.KindInt, Default: MaxPageSize, Max: MaxPageSize},
	params.Field{Name: "keyword", Kind: params.KindString, Default: ""},
	params.Field{Name: "no_agreement", Kind: params.KindInt, Default: 1, Max: 1},
	params.Field{Name: "currency", Kind: params.KindString, Default: "rub"},
	params.Field{Name: "order_field", Kind: params.KindString, Default: "date", Allowed: []string{"date", "payment"}},
	params.Field{Name: "order_direction", Kind: params.KindString, Default: "desc", Allowed: []string{"asc", "desc"}},
	params.Field{Name: "town", Kind: params.KindInt},
	params.Field{Name: "experience", Kind: params.KindInt},
	params.Field{Name: "type_of_work", Kind: params.KindInt},
	params.Field{Name: "payment_from", Kind: params.KindInt},
	params.Field{Name: "payment_to", Kind: params.KindInt},
	params.Field{Name: "period", Kind: params.KindInt},
)

// SuperJobSchema is the parameter table of the SuperJob vacancy search.
func SuperJobSchema() *params.Schema {
	return superJobSchema
}

var superJobEnums = []string{"experience", "type_of_work", "period"}

type SuperJob struct {
	api
	baseURL   string
	userAgent string
	appID     string
}

func NewSuperJob(fetcher network.Fetcher, cfg models.ClientConfig, c cache.Cache, logger zerolog.Logger) *SuperJob {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.SuperJobURL), "/")
	if baseURL == "" {
		baseURL = DefaultSuperJobURL
	}
	logger = logger.With().Str("provider", string(models.ProviderSuperJob)).Logger()
	return &SuperJob{
		api:       newAPI(fetcher, c, logger, cfg.RetryAttempts, cfg.RetryBase),
		baseURL:   baseURL,
		userAgent: strings.TrimSpace(cfg.SuperJobUserAgent),
		appID:     strings.TrimSpace(cfg.SuperJobAppID),
	}
}

func (s *SuperJob) Name() models.Provider {
	return models.ProviderSuperJob
}

func (s *SuperJob) Schema() *params.Schema {
	return superJobSchema
}

func (s *SuperJob) NewParams() *params.Set {
	return superJobSchema.New()
}

// Configured fails until an app id is set; SuperJob rejects anonymous calls.
func (s *SuperJob) Configured() error {
	if s.appID == "" {
		return ErrMissingAppID
	}
	return nil
}

func (s *SuperJob) headers() map[string]string {
	headers := map[string]string{"X-Api-App-Id": s.appID}
	if s.userAgent != "" {
		headers["User-Agent"] = s.userAgent
	}
	return headers
}

type superJobPage struct {
	Objects []models.RawRecord `json:"objects"`
	Total   int                `json:"total"`
}

// Fetch requests the single page described by set. The API reports only a
// total, so the last page index is derived from it and the page size.
func (s *SuperJob) Fetch(ctx context.Context, set *params.Set) (Page, error) {
	if err := s.Configured(); err != nil {
		return Page{}, err
	}
	var resp superJobPage
	if err := s.getJSON(ctx, s.baseURL+"/vacancies/", set.Query(), s.headers(), &resp); err != nil {
		return Page{}, err
	}
	items := resp.Objects
	if items == nil {
		items = []models.RawRecord{}
	}
	size := set.Int("count")
	if size <= 0 {
		size = superJobDefaultCount
	}
	return Page{Items: items, Found: resp.Total, LastPage: lastPage(resp.Total, size)}, nil
}

func (s *SuperJob) Collect(ctx context.Context, set *params.Set, quantity int) ([]models.RawRecord, error) {
	return collect(ctx, s.logger, s.Fetch, set, quantity)
}

func (s *SuperJob) Dictionary(ctx context.Context) (*Dictionary, error) {
	var raw map[string]json.RawMessage
	if err := s.cachedJSON(ctx, "sj:references", s.baseURL+"/references/", s.headers(), &raw); err != nil {
		return nil, err
	}

	dict := &Dictionary{Provider: models.ProviderSuperJob, Enums: map[string][]Option{}}
	for _, section := range superJobEnums {
		payload, ok := raw[section]
		if !ok {
			continue
		}
		var value any
		if err := decode(payload, &value); err != nil {
			return nil, err
		}
		dict.Enums[section] = optionsFrom(value)
	}
	return dict, nil
}

// Areas returns the towns of the combined region tree. Countries and
// regions are not valid town filters and are skipped.
func (s *SuperJob) Areas(ctx context.Context) ([]Area, error) {
	var tree any
	if err := s.cachedJSON(ctx, "sj:regions", s.baseURL+"/regions/combined/", s.headers(), &tree); err != nil {
		return nil, err
	}
	return walkAreas(tree, "towns", "title", false), nil
}

func (s *SuperJob) ApplyArea(set *params.Set, area Area) error {
	id, err := strconv.Atoi(strings.TrimSpace(area.ID))
	if err != nil {
		return unknownArea(s.Name(), area)
	}
	return set.Set("town", id)
}
