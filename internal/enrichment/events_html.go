package enrichment

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/trip-guide/internal/types"
)

// HTMLEventsProvider scrapes a static citywide events-listing page as a
// fallback when no events API is configured. It only handles the events
// category; other categories return nothing so the provider can sit in the
// same list as the API providers.
type HTMLEventsProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTMLEventsProvider creates a provider scraping listingURL. The page is
// expected to render one ".event-item" block per event with ".event-name",
// ".event-venue", and an optional link.
func NewHTMLEventsProvider(baseURL string) *HTMLEventsProvider {
	return &HTMLEventsProvider{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns the provenance identifier recorded on items.
func (p *HTMLEventsProvider) Name() string { return "events-html" }

// Search fetches and parses the listing page for the destination.
func (p *HTMLEventsProvider) Search(ctx context.Context, category types.Category, destination string, _ SearchFilters) ([]types.EnrichedItem, error) {
	if category != types.CategoryEvents {
		return nil, nil
	}

	pageURL := fmt.Sprintf("%s/events?city=%s", p.baseURL, url.QueryEscape(destination))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build events request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("events page fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("events page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse events page: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse events URL: %w", err)
	}

	var items []types.EnrichedItem
	doc.Find(".event-item").Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Find(".event-name").Text())
		if name == "" {
			return
		}
		item := types.EnrichedItem{
			Name:     name,
			Address:  strings.TrimSpace(s.Find(".event-venue").Text()),
			Category: types.CategoryEvents,
			Source:   p.Name(),
		}
		if tags := strings.TrimSpace(s.Find(".event-tags").Text()); tags != "" {
			for _, tag := range strings.Split(tags, ",") {
				if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
					item.Tags = append(item.Tags, tag)
				}
			}
		}
		if href, ok := s.Find("a[href]").First().Attr("href"); ok {
			if ref, err := url.Parse(href); err == nil {
				item.URL = base.ResolveReference(ref).String()
			}
		}
		items = append(items, item)
	})
	return items, nil
}
