// Package openmeteo provides a client for the Open-Meteo historical weather
// archive API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/agrisight/agrisight/internal/resilience"
)

const (
	defaultBaseURL  = "https://archive-api.open-meteo.com"
	defaultTimezone = "Africa/Dar_es_Salaam"

	// dailyVariables are the archive series the advisory pipeline consumes.
	dailyVariables = "temperature_2m_mean,precipitation_sum,et0_fao_evapotranspiration"
)

// Client fetches daily weather history.
type Client interface {
	// Archive fetches the daily series for a location and date range.
	Archive(ctx context.Context, req ArchiveRequest) (*ArchiveResponse, error)
}

// ArchiveRequest identifies a location and an inclusive date range.
type ArchiveRequest struct {
	Latitude  float64
	Longitude float64
	StartDate string // ISO YYYY-MM-DD
	EndDate   string // ISO YYYY-MM-DD
	Timezone  string // defaults to Africa/Dar_es_Salaam
}

// ArchiveResponse is the Open-Meteo archive payload.
type ArchiveResponse struct {
	Latitude  float64      `json:"latitude"`
	Longitude float64      `json:"longitude"`
	Timezone  string       `json:"timezone"`
	Daily     *DailySeries `json:"daily,omitempty"`
}

// DailySeries holds parallel per-day sequences. All populated slices have
// equal length; ET0 may be absent entirely.
type DailySeries struct {
	Time                     []string  `json:"time"`
	Temperature2mMean        []float64 `json:"temperature_2m_mean"`
	PrecipitationSum         []float64 `json:"precipitation_sum"`
	ET0FAOEvapotranspiration []float64 `json:"et0_fao_evapotranspiration,omitempty"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets the requests-per-second limit for archive calls.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
		}
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an Open-Meteo client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(5, 5), // free tier: keep well under 10 req/s
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Archive(ctx context.Context, req ArchiveRequest) (*ArchiveResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "openmeteo: rate limit")
	}

	tz := req.Timezone
	if tz == "" {
		tz = defaultTimezone
	}

	params := url.Values{
		"latitude":   {fmt.Sprintf("%.6f", req.Latitude)},
		"longitude":  {fmt.Sprintf("%.6f", req.Longitude)},
		"start_date": {req.StartDate},
		"end_date":   {req.EndDate},
		"daily":      {dailyVariables},
		"timezone":   {tz},
	}

	reqURL := c.baseURL + "/v1/archive?" + params.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "openmeteo: build request")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "openmeteo: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "openmeteo: read body")
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := eris.Errorf("openmeteo: unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}

	var archive ArchiveResponse
	if err := json.Unmarshal(body, &archive); err != nil {
		return nil, eris.Wrap(err, "openmeteo: unmarshal response")
	}

	return &archive, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
