package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/jimezsa/vacli/internal/cache"
	"github.com/jimezsa/vacli/internal/network"
	"github.com/rs/zerolog"
)

// api is the request plumbing shared by both provider clients.
type api struct {
	retrier network.Retrier
	cache   cache.Cache
	logger  zerolog.Logger
}

func newAPI(fetcher network.Fetcher, c cache.Cache, logger zerolog.Logger, attempts int, base time.Duration) api {
	if c == nil {
		c = cache.Noop{}
	}
	return api{
		retrier: network.Retrier{Fetcher: fetcher, Attempts: attempts, Base: base, Logger: logger},
		cache:   c,
		logger:  logger,
	}
}

// get performs one logical GET under the shared retry policy.
func (a api) get(ctx context.Context, target string, query url.Values, headers map[string]string) ([]byte, error) {
	return a.retrier.Get(ctx, target, query, headers)
}

func (a api) getJSON(ctx context.Context, target string, query url.Values, headers map[string]string, out any) error {
	body, err := a.get(ctx, target, query, headers)
	if err != nil {
		return err
	}
	return decode(body, out)
}

// cachedJSON serves key from the payload cache before going to the network.
// A cache failure is logged and treated as a miss.
func (a api) cachedJSON(ctx context.Context, key, target string, headers map[string]string, out any) error {
	if payload, ok, err := a.cache.Get(key); err != nil {
		a.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if ok {
		if err := decode(payload, out); err == nil {
			return nil
		}
		a.logger.Debug().Str("key", key).Msg("discarding undecodable cache entry")
	}

	body, err := a.get(ctx, target, nil, headers)
	if err != nil {
		return err
	}
	if err := decode(body, out); err != nil {
		return err
	}
	if err := a.cache.Put(key, body); err != nil {
		a.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return nil
}

func decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}
