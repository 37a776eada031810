package types

import "time"

// Category identifies one enrichment collection within a guide.
type Category string

// Enrichment categories.
const (
	CategoryDining      Category = "dining"
	CategoryAttractions Category = "attractions"
	CategoryEvents      Category = "events"
)

// AllCategories lists the enrichment categories in pipeline order.
var AllCategories = []Category{CategoryDining, CategoryAttractions, CategoryEvents}

// EnrichedItem is one recommended place or event, with provenance
// identifying which provider supplied it.
type EnrichedItem struct {
	Name     string   `json:"name"`
	Address  string   `json:"address,omitempty"`
	Category Category `json:"category"`
	Tags     []string `json:"tags,omitempty"`
	Rating   float64  `json:"rating,omitempty"`
	Price    string   `json:"price,omitempty"`
	URL      string   `json:"url,omitempty"`
	Source   string   `json:"source"`
}

// DayWeather is a single day's forecast attached to the guide.
type DayWeather struct {
	Date      time.Time `json:"date"`
	Summary   string    `json:"summary"`
	HighC     float64   `json:"high_c"`
	LowC      float64   `json:"low_c"`
	RainRisk  float64   `json:"rain_risk"`
	Available bool      `json:"available"`
}

// Activity is one scheduled entry inside a day plan. ItemIndex points into
// the guide's per-category item collection; a negative index means the
// activity is narrative-only (no backing enriched item).
type Activity struct {
	TimeOfDay string   `json:"time_of_day"`
	Title     string   `json:"title"`
	Category  Category `json:"category,omitempty"`
	ItemIndex int      `json:"item_index"`
	Note      string   `json:"note,omitempty"`
}

// DayPlan is one ordered day of the itinerary.
type DayPlan struct {
	Day        int        `json:"day"`
	Date       time.Time  `json:"date"`
	Title      string     `json:"title"`
	Activities []Activity `json:"activities"`
	Weather    *DayWeather `json:"weather,omitempty"`
}

// Citation records a source used by the content generator.
type Citation struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url"`
}

// GuideText is the narrative portion produced by a content generator.
type GuideText struct {
	Summary  string     `json:"summary"`
	Insights []string   `json:"insights,omitempty"`
	DayNotes []string   `json:"day_notes,omitempty"`
	Citations []Citation `json:"citations,omitempty"`
}

// Guide is the final artifact of a successful generation run. It is
// immutable once written; a later run replaces it wholesale.
type Guide struct {
	TripID      string                      `json:"trip_id"`
	Destination string                      `json:"destination"`
	Summary     string                      `json:"summary"`
	Insights    []string                    `json:"insights,omitempty"`
	Days        []DayPlan                   `json:"days"`
	Items       map[Category][]EnrichedItem `json:"items"`
	Weather     []DayWeather                `json:"weather,omitempty"`
	Citations   []Citation                  `json:"citations,omitempty"`
	Provider    string                      `json:"provider"`
	Warnings    []string                    `json:"warnings,omitempty"`
	GeneratedAt time.Time                   `json:"generated_at"`
}
