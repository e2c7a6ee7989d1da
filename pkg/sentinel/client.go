// Package sentinel provides a client for Sentinel Hub satellite imagery:
// OAuth token handling, WMS instance configuration lookup, and NDVI
// processing requests.
package sentinel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/agrisight/agrisight/internal/resilience"
)

const (
	defaultBaseURL = "https://services.sentinel-hub.com"

	// tokenRefreshMargin renews the OAuth token before it actually expires.
	tokenRefreshMargin = time.Minute
)

// ndviEvalscript computes NDVI from Sentinel-2 red (B04) and NIR (B08) bands.
const ndviEvalscript = `//VERSION=3
function setup() {
  return {
    input: [{ bands: ["B04", "B08"] }],
    output: { bands: 1, sampleType: "FLOAT32" }
  };
}
function evaluatePixel(sample) {
  let ndvi = (sample.B08 - sample.B04) / (sample.B08 + sample.B04);
  return [ndvi];
}`

// Client talks to Sentinel Hub.
type Client interface {
	// Configured reports whether usable credentials were supplied.
	Configured() bool

	// InstanceInfo fetches the WMS configuration for the instance.
	InstanceInfo(ctx context.Context) (*InstanceInfo, error)

	// ProcessNDVI runs an NDVI processing request over a bounding box and
	// time range and returns the size of the rendered output.
	ProcessNDVI(ctx context.Context, req NDVIRequest) (*NDVIResult, error)

	// WMSEndpoint returns the tile URL for the configured instance.
	WMSEndpoint() string
}

// InstanceInfo describes a WMS configuration instance.
type InstanceInfo struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Layers []string `json:"layers"`
}

// NDVIRequest is a processing request over a bounding box.
type NDVIRequest struct {
	BBox []float64 // lonMin, latMin, lonMax, latMax
	From string    // RFC3339
	To   string    // RFC3339
}

// NDVIResult reports a completed processing request.
type NDVIResult struct {
	DataSize int `json:"dataSize"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default service base URL.
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

type httpClient struct {
	clientID     string
	clientSecret string
	instanceID   string
	baseURL      string
	http         *http.Client
	limiter      *rate.Limiter

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a Sentinel Hub client. Empty or placeholder credentials
// produce an unconfigured client; callers are expected to fall back to demo
// data in that case.
func NewClient(clientID, clientSecret, instanceID string, opts ...Option) Client {
	c := &httpClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		instanceID:   instanceID,
		baseURL:      defaultBaseURL,
		http:         &http.Client{Timeout: 60 * time.Second},
		limiter:      rate.NewLimiter(5, 5),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Configured() bool {
	return c.clientID != "" && !strings.Contains(c.clientID, "your_client") &&
		c.clientSecret != "" &&
		c.instanceID != "" && !strings.Contains(c.instanceID, "your_instance")
}

func (c *httpClient) WMSEndpoint() string {
	return c.baseURL + "/ogc/wms/" + c.instanceID
}

// accessToken returns a cached OAuth token, refreshing it when it is within
// tokenRefreshMargin of expiry.
func (c *httpClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", eris.Wrap(err, "sentinel: build token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "sentinel: token request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		statusErr := eris.Errorf("sentinel: token request returned status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return "", resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return "", statusErr
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", eris.Wrap(err, "sentinel: parse token response")
	}

	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenRefreshMargin)
	return c.token, nil
}

func (c *httpClient) InstanceInfo(ctx context.Context) (*InstanceInfo, error) {
	if !c.Configured() {
		return nil, eris.New("sentinel: not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "sentinel: rate limit")
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/configuration/v1/wms/instances/%s", c.baseURL, c.instanceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sentinel: build instance request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "sentinel: instance request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		statusErr := eris.Errorf("sentinel: instance request returned status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}

	var raw struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Layers []struct {
			ID string `json:"id"`
		} `json:"layers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, eris.Wrap(err, "sentinel: parse instance response")
	}

	info := &InstanceInfo{ID: raw.ID, Name: raw.Name}
	for _, l := range raw.Layers {
		info.Layers = append(info.Layers, l.ID)
	}
	return info, nil
}

func (c *httpClient) ProcessNDVI(ctx context.Context, ndviReq NDVIRequest) (*NDVIResult, error) {
	if !c.Configured() {
		return nil, eris.New("sentinel: not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "sentinel: rate limit")
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"input": map[string]any{
			"bounds": map[string]any{
				"bbox": ndviReq.BBox,
				"properties": map[string]any{
					"crs": "http://www.opengis.net/def/crs/EPSG/0/4326",
				},
			},
			"data": []map[string]any{{
				"type": "sentinel-2-l2a",
				"dataFilter": map[string]any{
					"timeRange": map[string]any{
						"from": ndviReq.From,
						"to":   ndviReq.To,
					},
				},
			}},
		},
		"output": map[string]any{
			"width":  512,
			"height": 512,
			"responses": []map[string]any{{
				"identifier": "default",
				"format":     map[string]any{"type": "image/tiff"},
			}},
		},
		"evalscript": ndviEvalscript,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, eris.Wrap(err, "sentinel: marshal process request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/process", bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "sentinel: build process request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "sentinel: process request")
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "sentinel: read process response")
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := eris.Errorf("sentinel: process request returned status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}

	return &NDVIResult{DataSize: len(data)}, nil
}
