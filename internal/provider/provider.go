package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/jimezsa/vacli/internal/cache"
	"github.com/jimezsa/vacli/internal/models"
	"github.com/jimezsa/vacli/internal/network"
	"github.com/jimezsa/vacli/internal/params"
	"github.com/rs/zerolog"
)

const (
	// MaxQuantity is the largest result count either provider serves for
	// one search.
	MaxQuantity = 500
	// MaxPageSize caps per_page (HeadHunter) and count (SuperJob).
	MaxPageSize = 100

	pageParam = "page"
)

var (
	ErrNonOKStatus         = network.ErrNonOKStatus
	ErrDecode              = errors.New("malformed response body")
	ErrQuantityOutOfBounds = errors.New("quantity out of bounds")
	ErrMissingAppID        = errors.New("superjob app id is not configured")
)

// StatusError carries the HTTP status of a rejected request.
type StatusError = network.StatusError

// Page is one decoded search response. LastPage is zero-indexed and -1
// when the provider found nothing.
type Page struct {
	Items    []models.RawRecord
	Found    int
	LastPage int
}

// Provider is a client for one job-listing API.
type Provider interface {
	Name() models.Provider
	Schema() *params.Schema
	NewParams() *params.Set
	// Configured reports missing credentials before any request is made.
	Configured() error
	Fetch(ctx context.Context, set *params.Set) (Page, error)
	Collect(ctx context.Context, set *params.Set, quantity int) ([]models.RawRecord, error)
	Dictionary(ctx context.Context) (*Dictionary, error)
	Areas(ctx context.Context) ([]Area, error)
	ApplyArea(set *params.Set, area Area) error
}

// Registry builds every supported provider on a shared fetcher.
func Registry(fetcher network.Fetcher, cfg models.ClientConfig, c cache.Cache, logger zerolog.Logger) map[models.Provider]Provider {
	if c == nil {
		c = cache.Noop{}
	}
	return map[models.Provider]Provider{
		models.ProviderHeadHunter: NewHeadHunter(fetcher, cfg, c, logger),
		models.ProviderSuperJob:   NewSuperJob(fetcher, cfg, c, logger),
	}
}

// Select resolves a comma-separated provider list against the registry.
// An empty list or "all" selects every provider.
func Select(registry map[models.Provider]Provider, list string) ([]Provider, error) {
	requested, err := models.ParseProviders(list)
	if err != nil {
		return nil, err
	}
	selected := make([]Provider, 0, len(requested))
	for _, tag := range requested {
		p, ok := registry[tag]
		if !ok {
			return nil, fmt.Errorf("provider not registered: %s", tag)
		}
		selected = append(selected, p)
	}
	return selected, nil
}

// Usable drops the providers that are not configured and returns why each
// was dropped.
func Usable(providers []Provider) ([]Provider, map[models.Provider]error) {
	usable := make([]Provider, 0, len(providers))
	var skipped map[models.Provider]error
	for _, p := range providers {
		if err := p.Configured(); err != nil {
			if skipped == nil {
				skipped = map[models.Provider]error{}
			}
			skipped[p.Name()] = err
			continue
		}
		usable = append(usable, p)
	}
	return usable, skipped
}

type pageFunc func(ctx context.Context, set *params.Set) (Page, error)

// collect runs one pagination round on a private copy of set. Page N+1 is
// requested only while fewer than quantity records are held and page N
// reported more pages.
func collect(ctx context.Context, logger zerolog.Logger, fetch pageFunc, set *params.Set, quantity int) ([]models.RawRecord, error) {
	if quantity < 0 || quantity > MaxQuantity {
		return nil, fmt.Errorf("%w: %d not in [0, %d]", ErrQuantityOutOfBounds, quantity, MaxQuantity)
	}
	if quantity == 0 {
		return []models.RawRecord{}, nil
	}

	round := set.Clone()
	page := round.Int(pageParam)

	current, err := fetch(ctx, round)
	if err != nil {
		return nil, err
	}
	if current.Found == 0 {
		logger.Debug().Msg("provider reported no matches")
		return []models.RawRecord{}, nil
	}

	out := make([]models.RawRecord, 0, quantity)
	out = append(out, current.Items...)
	logger.Debug().Int("page", page).Int("items", len(current.Items)).Int("last_page", current.LastPage).Msg("fetched page")

	for len(out) < quantity && page < current.LastPage {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page++
		if err := round.Set(pageParam, page); err != nil {
			return nil, err
		}
		current, err = fetch(ctx, round)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		logger.Debug().Int("page", page).Int("items", len(current.Items)).Int("last_page", current.LastPage).Msg("fetched page")
		if len(current.Items) == 0 {
			break
		}
		out = append(out, current.Items...)
	}

	if len(out) > quantity {
		out = out[:quantity]
	}
	logger.Info().Int("found", current.Found).Int("collected", len(out)).Msg("collected vacancies")
	return out, nil
}

// lastPage is the zero-indexed last page for total results at pageSize.
func lastPage(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return -1
	}
	return (total+pageSize-1)/pageSize - 1
}
