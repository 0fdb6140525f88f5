package carbon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const maxCarbonKitResponseBytes = 1 << 20

// ResponseCache stores decoded provider responses. *cache.FileStore satisfies it.
type ResponseCache interface {
	GetJSON(key string, v any) error
	SetJSON(key string, v any) error
}

// CarbonKit queries a CarbonKit-compatible great circle flight calculation endpoint.
type CarbonKit struct {
	endpoint string
	username string
	password string
	client   *http.Client
	cache    ResponseCache
	limiter  *rate.Limiter
	logger   zerolog.Logger
}

// CarbonKitOption customises a CarbonKit provider.
type CarbonKitOption func(*CarbonKit)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) CarbonKitOption {
	return func(k *CarbonKit) { k.client = c }
}

// WithResponseCache reuses decoded responses for the cache's TTL (24 hours by default).
func WithResponseCache(c ResponseCache) CarbonKitOption {
	return func(k *CarbonKit) { k.cache = c }
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(perSecond float64, burst int) CarbonKitOption {
	return func(k *CarbonKit) { k.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// WithLogger sets the logger used for cache and request diagnostics.
func WithLogger(l zerolog.Logger) CarbonKitOption {
	return func(k *CarbonKit) { k.logger = l }
}

// NewCarbonKit returns a provider for endpoint authenticating with basic auth.
func NewCarbonKit(endpoint, username, password string, opts ...CarbonKitOption) *CarbonKit {
	k := &CarbonKit{
		endpoint: endpoint,
		username: username,
		password: password,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

type carbonKitResponse struct {
	Status string `json:"status"`
	Output struct {
		Amounts []struct {
			Type  string  `json:"type"`
			Value float64 `json:"value"`
			Unit  string  `json:"unit"`
		} `json:"amounts"`
	} `json:"output"`
}

// FlightKgCO2e returns the totalDirectCO2e amount for a one-way flight for one passenger.
func (k *CarbonKit) FlightKgCO2e(ctx context.Context, from, to Coordinates) (float64, error) {
	query := flightQuery(from, to)
	cacheKey := "carbonkit:" + query

	var resp carbonKitResponse
	if k.cache != nil {
		if err := k.cache.GetJSON(cacheKey, &resp); err == nil {
			k.logger.Debug().Str("cache_key", cacheKey).Msg("carbonkit cache hit")
			return totalDirectCO2e(resp)
		}
	}

	resp, err := k.fetch(ctx, query)
	if err != nil {
		return 0, err
	}

	kg, err := totalDirectCO2e(resp)
	if err != nil {
		return 0, err
	}

	if k.cache != nil {
		if setErr := k.cache.SetJSON(cacheKey, resp); setErr != nil {
			k.logger.Warn().Err(setErr).Msg("failed to cache carbonkit response")
		}
	}
	return kg, nil
}

func (k *CarbonKit) fetch(ctx context.Context, query string) (carbonKitResponse, error) {
	var resp carbonKitResponse

	if k.limiter != nil {
		if err := k.limiter.Wait(ctx); err != nil {
			return resp, fmt.Errorf("waiting for carbonkit rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.endpoint+"?"+query, nil)
	if err != nil {
		return resp, fmt.Errorf("building carbonkit request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if k.username != "" || k.password != "" {
		req.SetBasicAuth(k.username, k.password)
	}

	start := time.Now()
	httpResp, err := k.client.Do(req)
	if err != nil {
		return resp, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	defer httpResp.Body.Close()

	k.logger.Debug().
		Int("status", httpResp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("carbonkit request")

	if httpResp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(httpResp.Body, maxCarbonKitResponseBytes))
		return resp, fmt.Errorf("%w: status %d", ErrProviderUnavailable, httpResp.StatusCode)
	}

	if err = json.NewDecoder(io.LimitReader(httpResp.Body, maxCarbonKitResponseBytes)).Decode(&resp); err != nil {
		return resp, fmt.Errorf("%w: decoding response: %w", ErrProviderUnavailable, err)
	}
	return resp, nil
}

func totalDirectCO2e(resp carbonKitResponse) (float64, error) {
	if resp.Status != "OK" {
		return 0, fmt.Errorf("%w: response status %q", ErrProviderUnavailable, resp.Status)
	}
	for _, amount := range resp.Output.Amounts {
		if amount.Type == "totalDirectCO2e" {
			if amount.Value < 0 {
				return 0, ErrNegativeValue
			}
			return amount.Value, nil
		}
	}
	return 0, errors.Join(ErrProviderUnavailable, errors.New("no totalDirectCO2e amount in response"))
}

func flightQuery(from, to Coordinates) string {
	v := url.Values{}
	v.Set("type", "great circle route")
	v.Set("values.isReturn", "false")
	v.Set("values.journeys", "1")
	v.Set("values.passengers", "1")
	v.Set("values.lat1", strconv.FormatFloat(from.Latitude, 'f', 6, 64))
	v.Set("values.long1", strconv.FormatFloat(from.Longitude, 'f', 6, 64))
	v.Set("values.lat2", strconv.FormatFloat(to.Latitude, 'f', 6, 64))
	v.Set("values.long2", strconv.FormatFloat(to.Longitude, 'f', 6, 64))
	return v.Encode()
}
