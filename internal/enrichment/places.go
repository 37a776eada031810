package enrichment

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"context"

	"github.com/jonathan/trip-guide/internal/types"
)

// PlacesAPIProvider queries a JSON place-search API (dining, attractions,
// and events listings). The exact upstream is configured by base URL; the
// response shape below is the common denominator the service consumes.
type PlacesAPIProvider struct {
	name       string
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewPlacesAPIProvider creates a provider against the given API base URL.
func NewPlacesAPIProvider(name, baseURL, apiKey string) *PlacesAPIProvider {
	return &PlacesAPIProvider{
		name:       name,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns the provenance identifier recorded on items.
func (p *PlacesAPIProvider) Name() string { return p.name }

// placeResult is one row of the upstream search response.
type placeResult struct {
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Tags     []string `json:"tags"`
	Rating   float64  `json:"rating"`
	Price    string   `json:"price"`
	URL      string   `json:"url"`
}

// Search queries the API for one category in one destination.
func (p *PlacesAPIProvider) Search(ctx context.Context, category types.Category, destination string, filters SearchFilters) ([]types.EnrichedItem, error) {
	query := url.Values{}
	query.Set("category", string(category))
	query.Set("location", destination)
	if len(filters.Cuisines) > 0 {
		query.Set("cuisine", strings.Join(filters.Cuisines, ","))
	}
	if len(filters.Tags) > 0 {
		query.Set("tags", strings.Join(filters.Tags, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/search?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("place search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("place search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	var parsed struct {
		Results []placeResult `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	items := make([]types.EnrichedItem, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.Name == "" {
			continue
		}
		items = append(items, types.EnrichedItem{
			Name:     r.Name,
			Address:  r.Address,
			Category: category,
			Tags:     r.Tags,
			Rating:   r.Rating,
			Price:    r.Price,
			URL:      r.URL,
			Source:   p.name,
		})
	}
	return items, nil
}
