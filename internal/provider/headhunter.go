package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jimezsa/vacli/internal/cache"
	"github.com/jimezsa/vacli/internal/models"
	"github.com/jimezsa/vacli/internal/network"
	"github.com/jimezsa/vacli/internal/params"
	"github.com/rs/zerolog"
)

const DefaultHeadHunterURL = "https://api.hh.ru"

var headHunterSchema = params.NewSchema(string(models.ProviderHeadHunter),
	params.Field{Name: "page", Kind: params.KindInt, Default: 0},
	params.Field{Name: "per_page", Kind: params.KindInt, Default: MaxPageSize, Max: MaxPageSize},
	params.Field{Name: "text", Kind: params.KindString, Default: "", Required: true},
	params.Field{Name: "host", Kind: params.KindString, Default: "hh.ru", Allowed: []string{
		"hh.ru", "rabota.by", "hh1.az", "hh.uz", "hh.kz", "headhunter.ge", "headhunter.kg",
	}},
	params.Field{Name: "only_with_salary", Kind: params.KindBool, Default: false},
	params.Field{Name: "locale", Kind: params.KindString, Default: "RU", Allowed: []string{"RU", "EN"}},
	params.Field{Name: "experience", Kind: params.KindString},
	params.Field{Name: "employment", Kind: params.KindString},
	params.Field{Name: "schedule", Kind: params.KindString},
	params.Field{Name: "currency", Kind: params.KindString},
	params.Field{Name: "order_by", Kind: params.KindString},
	params.Field{Name: "area", Kind: params.KindString},
	params.Field{Name: "search_field", Kind: params.KindString},
	params.Field{Name: "salary", Kind: params.KindInt},
	params.Field{Name: "period", Kind: params.KindInt},
)

// HeadHunterSchema is the parameter table of the HeadHunter vacancy search.
func HeadHunterSchema() *params.Schema {
	return headHunterSchema
}

// headHunterEnums maps search parameters to dictionary sections.
var headHunterEnums = map[string]string{
	"experience": "experience",
	"employment": "employment",
	"schedule":   "schedule",
	"currency":   "currency",
	"order_by":   "vacancy_search_order",
}

type HeadHunter struct {
	api
	baseURL   string
	userAgent string
}

func NewHeadHunter(fetcher network.Fetcher, cfg models.ClientConfig, c cache.Cache, logger zerolog.Logger) *HeadHunter {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.HeadHunterURL), "/")
	if baseURL == "" {
		baseURL = DefaultHeadHunterURL
	}
	logger = logger.With().Str("provider", string(models.ProviderHeadHunter)).Logger()
	return &HeadHunter{
		api:       newAPI(fetcher, c, logger, cfg.RetryAttempts, cfg.RetryBase),
		baseURL:   baseURL,
		userAgent: strings.TrimSpace(cfg.HeadHunterUserAgent),
	}
}

func (h *HeadHunter) Name() models.Provider {
	return models.ProviderHeadHunter
}

func (h *HeadHunter) Schema() *params.Schema {
	return headHunterSchema
}

func (h *HeadHunter) NewParams() *params.Set {
	return headHunterSchema.New()
}

// Configured always succeeds: the public search needs no credentials.
func (h *HeadHunter) Configured() error {
	return nil
}

func (h *HeadHunter) headers() map[string]string {
	if h.userAgent == "" {
		return nil
	}
	return map[string]string{"HH-User-Agent": h.userAgent}
}

type headHunterPage struct {
	Items []models.RawRecord `json:"items"`
	Pages int                `json:"pages"`
	Found int                `json:"found"`
}

// Fetch requests the single page described by set.
func (h *HeadHunter) Fetch(ctx context.Context, set *params.Set) (Page, error) {
	var resp headHunterPage
	if err := h.getJSON(ctx, h.baseURL+"/vacancies", set.Query(), h.headers(), &resp); err != nil {
		return Page{}, err
	}
	items := resp.Items
	if items == nil {
		items = []models.RawRecord{}
	}
	return Page{Items: items, Found: resp.Found, LastPage: resp.Pages - 1}, nil
}

func (h *HeadHunter) Collect(ctx context.Context, set *params.Set, quantity int) ([]models.RawRecord, error) {
	return collect(ctx, h.logger, h.Fetch, set, quantity)
}

// Dictionary loads the filter enumerations. Currencies are limited to the
// ones in use and the distance ordering is dropped since it needs
// coordinates the search never sends.
func (h *HeadHunter) Dictionary(ctx context.Context) (*Dictionary, error) {
	var raw map[string]json.RawMessage
	if err := h.cachedJSON(ctx, "hh:dictionaries", h.baseURL+"/dictionaries", h.headers(), &raw); err != nil {
		return nil, err
	}

	dict := &Dictionary{Provider: models.ProviderHeadHunter, Enums: map[string][]Option{}}
	for param, section := range headHunterEnums {
		payload, ok := raw[section]
		if !ok {
			continue
		}
		var value any
		if err := decode(payload, &value); err != nil {
			return nil, err
		}
		options := optionsFrom(value)
		if param == "order_by" {
			filtered := options[:0]
			for _, option := range options {
				if option.ID != "distance" {
					filtered = append(filtered, option)
				}
			}
			options = filtered
		}
		dict.Enums[param] = options
	}
	return dict, nil
}

// Areas returns every country, region and town of the area tree.
func (h *HeadHunter) Areas(ctx context.Context) ([]Area, error) {
	var tree any
	if err := h.cachedJSON(ctx, "hh:areas", h.baseURL+"/areas", h.headers(), &tree); err != nil {
		return nil, err
	}
	return walkAreas(tree, "areas", "name", true), nil
}

func (h *HeadHunter) ApplyArea(set *params.Set, area Area) error {
	if strings.TrimSpace(area.ID) == "" {
		return unknownArea(h.Name(), area)
	}
	return set.Set("area", area.ID)
}
