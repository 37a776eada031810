package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/trip-guide/internal/types"
)

// HTTPWeatherProvider queries a JSON forecast API for day-by-day weather.
type HTTPWeatherProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPWeatherProvider creates a forecast client against baseURL.
func NewHTTPWeatherProvider(baseURL string) *HTTPWeatherProvider {
	return &HTTPWeatherProvider{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// forecastDay is one row of the upstream forecast response.
type forecastDay struct {
	Date     string  `json:"date"`
	Summary  string  `json:"summary"`
	HighC    float64 `json:"high_c"`
	LowC     float64 `json:"low_c"`
	RainRisk float64 `json:"rain_risk"`
}

// Forecast fetches up to days of forecast for the destination.
func (p *HTTPWeatherProvider) Forecast(ctx context.Context, destination string, days int) ([]types.DayWeather, error) {
	query := url.Values{}
	query.Set("location", destination)
	query.Set("days", fmt.Sprintf("%d", days))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/forecast?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build forecast request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forecast returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read forecast response: %w", err)
	}

	var parsed struct {
		Days []forecastDay `json:"days"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse forecast response: %w", err)
	}

	out := make([]types.DayWeather, 0, len(parsed.Days))
	for _, d := range parsed.Days {
		day := types.DayWeather{
			Summary:   d.Summary,
			HighC:     d.HighC,
			LowC:      d.LowC,
			RainRisk:  d.RainRisk,
			Available: true,
		}
		if t, err := time.Parse("2006-01-02", d.Date); err == nil {
			day.Date = t
		}
		out = append(out, day)
	}
	return out, nil
}
