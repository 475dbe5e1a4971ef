// Package rates converts salaries to rubles using the Central Bank of Russia
// daily exchange rates.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jimezsa/vacli/internal/cache"
	"github.com/jimezsa/vacli/internal/network"
	"github.com/rs/zerolog"
)

const DefaultURL = "https://www.cbr-xml-daily.ru/daily_json.js"

const cacheKey = "cbr:daily"

var ErrUnknownCurrency = errors.New("unknown currency")

// aliases maps legacy codes still seen in vacancies to their CBR code.
var aliases = map[string]string{
	"RUR": "RUB",
	"BYR": "BYN",
}

// Rates is one daily snapshot of ruble exchange rates.
type Rates struct {
	Date    string
	perUnit map[string]float64
}

type daily struct {
	Date   string `json:"Date"`
	Valute map[string]struct {
		CharCode string  `json:"CharCode"`
		Nominal  float64 `json:"Nominal"`
		Value    float64 `json:"Value"`
	} `json:"Valute"`
}

// Parse decodes the CBR daily JSON document.
func Parse(body []byte) (*Rates, error) {
	var doc daily
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode rates: %w", err)
	}
	if len(doc.Valute) == 0 {
		return nil, errors.New("decode rates: no currencies in document")
	}
	r := &Rates{Date: doc.Date, perUnit: make(map[string]float64, len(doc.Valute))}
	for code, entry := range doc.Valute {
		if entry.Nominal <= 0 || entry.Value <= 0 {
			continue
		}
		if entry.CharCode != "" {
			code = entry.CharCode
		}
		r.perUnit[strings.ToUpper(code)] = entry.Value / entry.Nominal
	}
	return r, nil
}

// ToRUB converts amount in code to rubles.
func (r *Rates) ToRUB(amount float64, code string) (float64, error) {
	code = normalize(code)
	if code == "RUB" {
		return amount, nil
	}
	rate, ok := r.perUnit[code]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
	}
	return amount * rate, nil
}

// Codes lists the currencies the snapshot can convert.
func (r *Rates) Codes() []string {
	codes := make([]string, 0, len(r.perUnit)+1)
	codes = append(codes, "RUB")
	for code := range r.perUnit {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func normalize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if alias, ok := aliases[code]; ok {
		return alias
	}
	return code
}

// Source loads rates over the network, through the payload cache.
type Source struct {
	retrier network.Retrier
	cache   cache.Cache
	url     string
	logger  zerolog.Logger
}

const defaultAttempts = 2

func NewSource(fetcher network.Fetcher, c cache.Cache, url string, logger zerolog.Logger) *Source {
	if c == nil {
		c = cache.Noop{}
	}
	if strings.TrimSpace(url) == "" {
		url = DefaultURL
	}
	return &Source{
		retrier: network.Retrier{Fetcher: fetcher, Attempts: defaultAttempts, Logger: logger},
		cache:   c,
		url:     url,
		logger:  logger,
	}
}

// WithRetry sets the retry budget for timeouts and gateway failures.
func (s *Source) WithRetry(attempts int, base time.Duration) *Source {
	s.retrier.Attempts = attempts
	s.retrier.Base = base
	return s
}

func (s *Source) Load(ctx context.Context) (*Rates, error) {
	if body, ok, err := s.cache.Get(cacheKey); err != nil {
		s.logger.Warn().Err(err).Msg("rates cache read failed")
	} else if ok {
		if r, err := Parse(body); err == nil {
			return r, nil
		}
	}

	body, err := s.retrier.Get(ctx, s.url, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	r, err := Parse(body)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put(cacheKey, body); err != nil {
		s.logger.Warn().Err(err).Msg("rates cache write failed")
	}
	s.logger.Debug().Str("date", r.Date).Int("currencies", len(r.perUnit)).Msg("loaded exchange rates")
	return r, nil
}
