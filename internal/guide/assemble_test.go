package guide

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/trip-guide/internal/types"
)

func parisFacts(days int) *types.TripFacts {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	return &types.TripFacts{
		TripID:        "paris-1",
		Destination:   "Paris",
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, days-1),
		TravelerCount: 2,
	}
}

func balancedPrefs() types.CanonicalPreferences {
	return types.CanonicalPreferences{
		Cuisines:      map[string]bool{},
		PriceTiers:    map[types.PriceTier]bool{types.PriceModerate: true},
		Interests:     map[string]map[string]bool{},
		Pace:          types.PaceBalanced,
		GroupType:     types.GroupCouple,
		ActivityLevel: 3,
	}
}

func TestBuild_MuseumLoverGetsTheMuseum(t *testing.T) {
	in := Input{
		Facts: parisFacts(3),
		Prefs: balancedPrefs(),
		Text:  &types.GuideText{Summary: "Paris for art lovers"},
		Items: map[types.Category][]types.EnrichedItem{
			types.CategoryAttractions: {
				{Name: "Louvre", Category: types.CategoryAttractions, Tags: []string{"museums"}, Rating: 4.8},
				{Name: "Eiffel Tower", Category: types.CategoryAttractions, Rating: 4.6},
			},
			types.CategoryDining: {
				{Name: "Le Comptoir", Category: types.CategoryDining, Rating: 4.5},
			},
		},
	}

	g, err := Build(in)
	require.NoError(t, err)

	found := false
	for _, day := range g.Days {
		for _, act := range day.Activities {
			if act.Title == "Louvre" {
				found = true
				assert.Equal(t, types.CategoryAttractions, act.Category)
				assert.Equal(t, 0, act.ItemIndex)
			}
		}
	}
	assert.True(t, found, "top-rated attraction must be scheduled")
}

func TestBuild_DayCountMatchesTripLength(t *testing.T) {
	g, err := Build(Input{
		Facts: parisFacts(5),
		Prefs: balancedPrefs(),
		Text:  &types.GuideText{Summary: "s"},
	})
	require.NoError(t, err)
	assert.Len(t, g.Days, 5)

	for i, day := range g.Days {
		assert.Equal(t, i+1, day.Day)
		assert.Equal(t, parisFacts(5).StartDate.AddDate(0, 0, i), day.Date)
	}
}

func TestBuild_OneDinnerPerDayRotating(t *testing.T) {
	in := Input{
		Facts: parisFacts(3),
		Prefs: balancedPrefs(),
		Text:  &types.GuideText{},
		Items: map[types.Category][]types.EnrichedItem{
			types.CategoryDining: {
				{Name: "A", Category: types.CategoryDining},
				{Name: "B", Category: types.CategoryDining},
			},
		},
	}

	g, err := Build(in)
	require.NoError(t, err)

	var dinners []string
	for _, day := range g.Days {
		count := 0
		for _, act := range day.Activities {
			if act.TimeOfDay == "dinner" {
				count++
				dinners = append(dinners, act.Title)
			}
		}
		assert.Equal(t, 1, count, "exactly one dinner per day")
	}
	assert.Equal(t, []string{"A", "B", "A"}, dinners)
}

func TestBuild_FallbackActivityWhenNoItems(t *testing.T) {
	g, err := Build(Input{
		Facts: parisFacts(2),
		Prefs: balancedPrefs(),
		Text:  &types.GuideText{Summary: "still a guide"},
	})
	require.NoError(t, err)

	for _, day := range g.Days {
		require.NotEmpty(t, day.Activities)
		for _, act := range day.Activities {
			assert.Equal(t, -1, act.ItemIndex, "narrative-only activities carry no item reference")
			assert.Contains(t, act.Title, "Paris")
		}
	}
}

func TestBuild_NoContentAtAll(t *testing.T) {
	_, err := Build(Input{Facts: parisFacts(2), Prefs: balancedPrefs()})
	assert.Error(t, err)
}

func TestBuild_EmptyDateRange(t *testing.T) {
	facts := parisFacts(1)
	facts.EndDate = facts.StartDate.AddDate(0, 0, -1)

	_, err := Build(Input{Facts: facts, Prefs: balancedPrefs(), Text: &types.GuideText{Summary: "s"}})
	assert.Error(t, err)
}

func TestBuild_PaceControlsActivityCount(t *testing.T) {
	relaxed := balancedPrefs()
	relaxed.Pace = types.PaceRelaxed
	packed := balancedPrefs()
	packed.Pace = types.PacePacked

	gRelaxed, err := Build(Input{Facts: parisFacts(1), Prefs: relaxed, Text: &types.GuideText{Summary: "s"}})
	require.NoError(t, err)
	gPacked, err := Build(Input{Facts: parisFacts(1), Prefs: packed, Text: &types.GuideText{Summary: "s"}})
	require.NoError(t, err)

	assert.Len(t, gRelaxed.Days[0].Activities, 2)
	assert.Len(t, gPacked.Days[0].Activities, 4)
}

func TestBuild_WeatherAttachedPerDay(t *testing.T) {
	weather := []types.DayWeather{
		{Date: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), Summary: "Sunny", Available: true},
	}

	g, err := Build(Input{
		Facts:   parisFacts(2),
		Prefs:   balancedPrefs(),
		Text:    &types.GuideText{Summary: "s"},
		Weather: weather,
	})
	require.NoError(t, err)

	require.NotNil(t, g.Days[0].Weather)
	assert.Equal(t, "Sunny", g.Days[0].Weather.Summary)
	assert.Nil(t, g.Days[1].Weather, "days past the forecast horizon carry no weather")
}

func TestBuild_DayTitlesPreferNarrative(t *testing.T) {
	g, err := Build(Input{
		Facts: parisFacts(2),
		Prefs: balancedPrefs(),
		Text:  &types.GuideText{Summary: "s", DayNotes: []string{"Montmartre morning"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Montmartre morning", g.Days[0].Title)
	assert.Equal(t, "Day 2 in Paris", g.Days[1].Title)
}
