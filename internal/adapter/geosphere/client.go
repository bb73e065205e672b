// Package geosphere implements domain.WeatherProvider against the GeoSphere
// Austria dataset API (TAWES 10-minute station observations).
package geosphere

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gampnico/scintillometry-tools/internal/domain"
	"github.com/gampnico/scintillometry-tools/internal/observability"
)

// Client implements domain.WeatherProvider using the GeoSphere dataset API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a GeoSphere weather client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Latest fetches the most recent TAWES 10-minute observation for a station.
// GeoSphere parameter codes: TL air temperature (°C), P station pressure
// (hPa), RF relative humidity (%), FF wind speed (m/s).
func (c *Client) Latest(ctx context.Context, stationID string) (domain.Observation, error) {
	params := url.Values{
		"parameters":  {"TL,P,RF,FF"},
		"station_ids": {stationID},
	}
	fullURL := fmt.Sprintf("%s/station/current/tawes-v1-10min?%s", c.baseURL, params.Encode())

	start := time.Now()
	obs, err := c.doRequest(ctx, fullURL)
	c.metrics.WeatherAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return domain.Observation{}, err
	}
	c.metrics.WeatherRequests.WithLabelValues("success").Inc()
	return obs, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.Observation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Observation{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Observation{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Observation{}, fmt.Errorf("geosphere API error: status %d: %s", resp.StatusCode, body)
	}

	var apiResp response
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return domain.Observation{}, fmt.Errorf("decode response: %w", err)
	}

	if len(apiResp.Features) == 0 || len(apiResp.Timestamps) == 0 {
		return domain.Observation{}, fmt.Errorf("geosphere returned no observations")
	}

	f := apiResp.Features[0]
	obs := domain.Observation{
		Temperature:      f.Properties.Parameters.lastValue("TL"),
		Pressure:         f.Properties.Parameters.lastValue("P"),
		RelativeHumidity: f.Properties.Parameters.lastValue("RF"),
		WindSpeed:        f.Properties.Parameters.lastValue("FF"),
	}
	if t, err := time.Parse(time.RFC3339, apiResp.Timestamps[len(apiResp.Timestamps)-1]); err == nil {
		obs.Time = t
	}
	return obs, nil
}

// GeoSphere API response types.

type response struct {
	Timestamps []string  `json:"timestamps"`
	Features   []feature `json:"features"`
}

type feature struct {
	Properties struct {
		Parameters parameters `json:"parameters"`
	} `json:"properties"`
}

type parameters map[string]struct {
	Data []*float64 `json:"data"`
}

// lastValue returns the most recent non-null sample for a parameter code, or
// zero when the station does not report it.
func (p parameters) lastValue(code string) float64 {
	series, ok := p[code]
	if !ok {
		return 0
	}
	for i := len(series.Data) - 1; i >= 0; i-- {
		if series.Data[i] != nil {
			return *series.Data[i]
		}
	}
	return 0
}
