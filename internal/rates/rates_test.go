package rates

import (
	"context"
	"errors"
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/jimezsa/vacli/internal/network"
	"github.com/rs/zerolog"
)

const dailyDoc = `{
  "Date": "2026-10-17T11:30:00+03:00",
  "Valute": {
    "USD": {"CharCode": "USD", "Nominal": 1, "Value": 92.5},
    "KZT": {"CharCode": "KZT", "Nominal": 100, "Value": 18.4},
    "BYN": {"CharCode": "BYN", "Nominal": 1, "Value": 28.3}
  }
}`

type stubFetcher struct {
	calls    int
	body     string
	statuses []int
}

// Get answers statuses in order, then 200 with body.
func (s *stubFetcher) Get(context.Context, string, url.Values, map[string]string) (int, []byte, error) {
	s.calls++
	if len(s.statuses) > 0 {
		status := s.statuses[0]
		s.statuses = s.statuses[1:]
		return status, nil, nil
	}
	return 200, []byte(s.body), nil
}

type mapCache map[string][]byte

func (m mapCache) Get(key string) ([]byte, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}
func (m mapCache) Put(key string, value []byte) error { m[key] = value; return nil }
func (m mapCache) Close() error                       { return nil }

func TestToRUB(t *testing.T) {
	r, err := Parse([]byte(dailyDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cases := []struct {
		amount float64
		code   string
		want   float64
	}{
		{1000, "usd", 92500},
		{1000, "KZT", 184},
		{1000, "rub", 1000},
		{1000, "RUR", 1000},
		{10, "BYR", 283},
	}
	for _, tc := range cases {
		got, err := r.ToRUB(tc.amount, tc.code)
		if err != nil {
			t.Fatalf("ToRUB(%v, %s) error = %v", tc.amount, tc.code, err)
		}
		if math.Abs(got-tc.want) > 1e-6 {
			t.Fatalf("ToRUB(%v, %s) = %v, want %v", tc.amount, tc.code, got, tc.want)
		}
	}

	if _, err := r.ToRUB(1, "XYZ"); !errors.Is(err, ErrUnknownCurrency) {
		t.Fatalf("ToRUB(XYZ) error = %v, want ErrUnknownCurrency", err)
	}
}

func TestSourceUsesCache(t *testing.T) {
	fetcher := &stubFetcher{body: dailyDoc}
	source := NewSource(fetcher, mapCache{}, "", zerolog.Nop())

	for i := 0; i < 2; i++ {
		if _, err := source.Load(context.Background()); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
	}
	if fetcher.calls != 1 {
		t.Fatalf("fetches = %d, want 1", fetcher.calls)
	}
}

func TestParseRejectsEmpty(t *testing.T) {
	if _, err := Parse([]byte(`{"Valute":{}}`)); err == nil {
		t.Fatalf("expected error for empty document")
	}
}

func TestSourceRetriesGatewayFailures(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		wantCalls int
		wantErr   bool
	}{
		{name: "recovers after 503 and 504", statuses: []int{503, 504}, wantCalls: 3},
		{name: "gives up after retries", statuses: []int{502, 502, 502}, wantCalls: 3, wantErr: true},
		{name: "no retry on 404", statuses: []int{404}, wantCalls: 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &stubFetcher{body: dailyDoc, statuses: tt.statuses}
			source := NewSource(fetcher, nil, "", zerolog.Nop()).WithRetry(2, time.Millisecond)

			_, err := source.Load(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, network.ErrNonOKStatus) {
				t.Fatalf("Load() error = %v, want ErrNonOKStatus", err)
			}
			if fetcher.calls != tt.wantCalls {
				t.Fatalf("fetches = %d, want %d", fetcher.calls, tt.wantCalls)
			}
		})
	}
}
