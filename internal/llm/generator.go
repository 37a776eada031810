// Package llm provides the narrative content generation capability behind
// the guide pipeline: a single Generator interface, concrete providers, and
// an ordered fallback chain that degrades to templated content rather than
// failing.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/trip-guide/internal/types"
)

// Generator produces the narrative sections of a guide from trip facts and
// canonical preferences. Implementations hide provider mechanics; callers
// see only text and citations.
type Generator interface {
	// Name returns the provider identifier used in provenance records.
	Name() string
	// Generate produces guide text for the trip. Implementations must
	// respect ctx cancellation and deadlines.
	Generate(ctx context.Context, facts *types.TripFacts, prefs types.CanonicalPreferences) (*types.GuideText, error)
}

// buildPrompt renders the shared generation prompt used by the remote
// providers. The template provider does not consume it.
func buildPrompt(facts *types.TripFacts, prefs types.CanonicalPreferences) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a travel guide for a %d-day trip to %s for %d traveler(s) (%s, pace: %s).\n",
		facts.Days(), facts.Destination, facts.TravelerCount, prefs.GroupType, prefs.Pace)
	if cuisines := prefs.CuisineList(); len(cuisines) > 0 {
		fmt.Fprintf(&sb, "Preferred cuisines: %s.\n", strings.Join(cuisines, ", "))
	}
	if tags := prefs.InterestTags(); len(tags) > 0 {
		fmt.Fprintf(&sb, "Interests: %s.\n", strings.Join(tags, ", "))
	}
	sb.WriteString(`Respond with JSON only, matching this shape:
{"summary": "...", "insights": ["..."], "day_notes": ["one note per day"], "citations": [{"title": "...", "url": "..."}]}`)
	return sb.String()
}

// cleanJSONBlock removes markdown code block wrappers from JSON.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
