package network

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	TransportTLS   = "tls"
	TransportResty = "resty"
)

// Fetcher is the single HTTP primitive provider clients depend on: one GET
// with query parameters and headers, answering status and raw body.
type Fetcher interface {
	Get(ctx context.Context, target string, query url.Values, headers map[string]string) (int, []byte, error)
}

// NewFetcher builds the configured transport. An empty kind selects the
// browser-fingerprinted tls client.
func NewFetcher(kind string, rotator *Rotator, timeout time.Duration) (Fetcher, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", TransportTLS:
		return NewClient(rotator, timeout)
	case TransportResty:
		return NewRestyClient(rotator, timeout), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", kind)
	}
}

func withQuery(target string, query url.Values) (string, error) {
	if len(query) == 0 {
		return target, nil
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	merged := u.Query()
	for key, values := range query {
		merged[key] = append([]string(nil), values...)
	}
	u.RawQuery = merged.Encode()
	return u.String(), nil
}
