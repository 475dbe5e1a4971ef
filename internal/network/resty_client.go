package network

import (
	"context"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient is a Fetcher on top of resty. It shares the proxy rotator
// with the tls client but leaves the user agent to the caller.
type RestyClient struct {
	client  *resty.Client
	rotator *Rotator
}

func NewRestyClient(rotator *Rotator, timeout time.Duration) *RestyClient {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	c.SetHeader("Accept", "application/json")
	return &RestyClient{client: c, rotator: rotator}
}

// Get implements Fetcher.
func (r *RestyClient) Get(ctx context.Context, target string, query url.Values, headers map[string]string) (int, []byte, error) {
	proxy := r.nextProxy()

	req := r.client.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	resp, err := req.Get(target)
	if err != nil {
		return 0, nil, err
	}
	if proxy != nil {
		r.rotator.Report(proxy, resp.StatusCode())
	}
	return resp.StatusCode(), resp.Body(), nil
}

func (r *RestyClient) nextProxy() *url.URL {
	if r.rotator == nil {
		return nil
	}
	proxy, err := r.rotator.Next()
	if err != nil || proxy == nil {
		r.client.RemoveProxy()
		return nil
	}
	r.client.SetProxy(proxy.String())
	return proxy
}
