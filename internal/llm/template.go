package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/trip-guide/internal/types"
)

// TemplateGenerator produces deterministic guide text from local templates.
// It performs no I/O and cannot fail, which makes it the mandatory final
// link of every fallback chain.
type TemplateGenerator struct{}

// NewTemplateGenerator returns the template-based generator.
func NewTemplateGenerator() *TemplateGenerator { return &TemplateGenerator{} }

// Name returns the provenance identifier for this provider.
func (g *TemplateGenerator) Name() string { return "template" }

// dayThemes rotates deterministic day titles when no LLM narrative exists.
var dayThemes = []string{
	"Getting oriented",
	"Local highlights",
	"Deeper exploration",
	"Off the beaten path",
	"Favorites revisited",
}

// Generate renders templated narrative. The error return is always nil and
// exists only to satisfy the Generator interface.
func (g *TemplateGenerator) Generate(_ context.Context, facts *types.TripFacts, prefs types.CanonicalPreferences) (*types.GuideText, error) {
	days := facts.Days()
	if days < 1 {
		days = 1
	}

	summary := fmt.Sprintf("A %d-day %s itinerary for %s at a %s pace.",
		days, prefs.GroupType, facts.Destination, prefs.Pace)
	if tags := prefs.InterestTags(); len(tags) > 0 {
		summary += fmt.Sprintf(" Built around your interests: %s.", strings.Join(tags, ", "))
	}

	insights := []string{
		fmt.Sprintf("Plan around %d main activities per day at a %s pace.", activitiesPerDay(prefs.Pace), prefs.Pace),
	}
	if cuisines := prefs.CuisineList(); len(cuisines) > 0 {
		insights = append(insights, fmt.Sprintf("Look for %s dining options near your hotel.", strings.Join(cuisines, " and ")))
	}

	notes := make([]string, days)
	for i := range notes {
		notes[i] = fmt.Sprintf("Day %d: %s in %s.", i+1, dayThemes[i%len(dayThemes)], facts.Destination)
	}

	return &types.GuideText{
		Summary:  summary,
		Insights: insights,
		DayNotes: notes,
	}, nil
}

// activitiesPerDay maps pace onto the number of scheduled activities.
func activitiesPerDay(pace types.Pace) int {
	switch pace {
	case types.PaceRelaxed:
		return 2
	case types.PacePacked:
		return 4
	default:
		return 3
	}
}
