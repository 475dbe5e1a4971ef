package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

const DefaultRetryBase = 500 * time.Millisecond

var ErrNonOKStatus = errors.New("non-ok response status")

// StatusError carries the HTTP status of a rejected request.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d from %s", e.Code, e.URL)
}

func (e *StatusError) Unwrap() error {
	return ErrNonOKStatus
}

// Retrier performs GETs that retry timeouts and gateway failures with
// exponential backoff. Every other failure is returned at once.
type Retrier struct {
	Fetcher  Fetcher
	Attempts int
	Base     time.Duration
	Logger   zerolog.Logger
}

// Get returns the body of a 2xx answer. Non-2xx answers fail with a
// *StatusError.
func (r Retrier) Get(ctx context.Context, target string, query url.Values, headers map[string]string) ([]byte, error) {
	attempts := r.Attempts
	if attempts < 0 {
		attempts = 0
	}
	base := r.Base
	if base <= 0 {
		base = DefaultRetryBase
	}

	var body []byte
	backoff := retry.WithMaxRetries(uint64(attempts), retry.NewExponential(base))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		status, data, err := r.Fetcher.Get(ctx, target, query, headers)
		if err != nil {
			if IsTimeout(ctx, err) {
				r.Logger.Debug().Err(err).Str("url", target).Msg("request timed out, retrying")
				return retry.RetryableError(err)
			}
			return err
		}
		if status < 200 || status > 299 {
			statusErr := &StatusError{Code: status, URL: target}
			if RetryableStatus(status) {
				r.Logger.Debug().Int("status", status).Str("url", target).Msg("gateway failure, retrying")
				return retry.RetryableError(statusErr)
			}
			return statusErr
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// IsTimeout reports a per-request timeout. Cancellation of the caller's
// context is not a timeout and is never retried.
func IsTimeout(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func RetryableStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
