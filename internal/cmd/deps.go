package cmd

import (
	"strings"
	"time"

	"github.com/jimezsa/vacli/internal/cache"
	"github.com/jimezsa/vacli/internal/config"
	"github.com/jimezsa/vacli/internal/models"
	"github.com/jimezsa/vacli/internal/network"
	"github.com/jimezsa/vacli/internal/provider"
	"github.com/jimezsa/vacli/internal/store"
)

// NetworkOptions are the transport flags shared by every command that
// talks to a provider.
type NetworkOptions struct {
	Proxies   string `help:"Comma-separated proxy URLs." env:"VACLI_PROXIES"`
	Transport string `help:"HTTP transport: tls or resty (default from config)." enum:",tls,resty" default:""`
	NoCache   bool   `help:"Bypass the dictionary and area cache."`
}

// clients bundles the network dependencies of one command run.
type clients struct {
	fetcher  network.Fetcher
	cache    cache.Cache
	registry map[models.Provider]provider.Provider
}

func (c *clients) Close() error {
	if c == nil || c.cache == nil {
		return nil
	}
	return c.cache.Close()
}

func newClients(ctx *Context, opts NetworkOptions) (*clients, error) {
	cfg := ctx.Config

	proxies, err := config.LoadProxies(opts.Proxies)
	if err != nil {
		return nil, err
	}
	var rotator *network.Rotator
	if len(proxies) > 0 {
		rotator, err = network.NewRotator(proxies, 10*time.Minute)
		if err != nil {
			return nil, err
		}
	}

	transport := firstNonEmpty(opts.Transport, cfg.Transport)
	fetcher, err := network.NewFetcher(transport, rotator, cfg.Timeout())
	if err != nil {
		return nil, err
	}

	payloads, err := openCache(cfg, opts.NoCache)
	if err != nil {
		ctx.Logger.Warn().Err(err).Msg("cache unavailable, continuing without it")
		payloads = cache.Noop{}
	}

	ctx.Logger.Debug().Str("transport", transport).Int("proxies", len(proxies)).Msg("clients ready")
	return &clients{
		fetcher:  fetcher,
		cache:    payloads,
		registry: provider.Registry(fetcher, cfg.ClientConfig(), payloads, ctx.Logger),
	}, nil
}

func openCache(cfg config.Config, disabled bool) (cache.Cache, error) {
	if disabled {
		return cache.Noop{}, nil
	}
	path := ""
	if !isNoCache(cfg.Cache.Type) {
		var err error
		path, err = cfg.ResolveCachePath()
		if err != nil {
			return nil, err
		}
	}
	return cache.New(cfg.Cache.Type, path, cfg.CacheTTL())
}

func isNoCache(typ string) bool {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "", "none", "disabled":
		return true
	default:
		return false
	}
}

func openStore(ctx *Context, flagPath string) (*store.Store, error) {
	path := strings.TrimSpace(flagPath)
	if path == "" {
		var err error
		path, err = ctx.Config.ResolveStorePath()
		if err != nil {
			return nil, err
		}
	}
	return store.New(path)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func defaultInt(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}
