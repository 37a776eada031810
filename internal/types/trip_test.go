package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2026, 7, d, 0, 0, 0, 0, time.UTC)
}

func TestTripFacts_Days(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"same day is one day", day(1), day(1), 1},
		{"weekend", day(3), day(5), 3},
		{"end before start", day(5), day(3), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := TripFacts{StartDate: tt.start, EndDate: tt.end}
			assert.Equal(t, tt.want, f.Days())
		})
	}
}

func TestTripFacts_Validate(t *testing.T) {
	valid := TripFacts{TripID: "t1", Destination: "Oslo", StartDate: day(1), EndDate: day(2)}
	assert.NoError(t, valid.Validate())

	missingID := valid
	missingID.TripID = ""
	assert.Error(t, missingID.Validate())

	missingDest := valid
	missingDest.Destination = ""
	assert.Error(t, missingDest.Validate())

	inverted := valid
	inverted.StartDate, inverted.EndDate = day(2), day(1)
	assert.Error(t, inverted.Validate())
}

func TestCanonicalPreferences_TierList(t *testing.T) {
	p := CanonicalPreferences{PriceTiers: map[PriceTier]bool{
		PriceLuxury: true,
		PriceBudget: true,
	}}
	assert.Equal(t, []PriceTier{PriceBudget, PriceLuxury}, p.TierList(), "cheapest first")
}

func TestCanonicalPreferences_CuisineList(t *testing.T) {
	p := CanonicalPreferences{Cuisines: map[string]bool{"thai": true, "basque": true, "off": false}}
	assert.Equal(t, []string{"basque", "thai"}, p.CuisineList())
}
