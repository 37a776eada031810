package preferences

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/trip-guide/internal/types"
)

func TestNormalize_EmptyPayload(t *testing.T) {
	prefs := Normalize(nil)

	assert.Equal(t, Defaults(), prefs)
	assert.Equal(t, types.PaceBalanced, prefs.Pace)
	assert.Equal(t, types.GroupCouple, prefs.GroupType)
	assert.Equal(t, 3, prefs.ActivityLevel)
	assert.True(t, prefs.PriceTiers[types.PriceModerate])
	assert.True(t, prefs.PriceTiers[types.PriceUpscale])
}

func TestNormalize_GarbageIsTotal(t *testing.T) {
	inputs := [][]byte{
		[]byte("not json at all"),
		[]byte(`{"cuisine": 42}`),
		[]byte(`[]`),
		[]byte(`{}`),
		[]byte(`{"unknown_field": {"deeply": ["nested"]}}`),
	}
	for _, raw := range inputs {
		prefs := Normalize(raw)
		assert.Equal(t, Defaults(), prefs, "input %q should normalize to defaults", raw)
	}
}

func TestNormalize_ModernPayload(t *testing.T) {
	raw := []byte(`{
		"cuisines": ["Italian", " french "],
		"priceTiers": ["budget", "luxury"],
		"interests": {"Culture": {"Museums": true, "opera": false}},
		"pace": "packed",
		"groupType": "family",
		"activityLevel": 5
	}`)

	prefs := Normalize(raw)

	assert.True(t, prefs.Cuisines["italian"])
	assert.True(t, prefs.Cuisines["french"])
	assert.True(t, prefs.PriceTiers[types.PriceBudget])
	assert.True(t, prefs.PriceTiers[types.PriceLuxury])
	assert.False(t, prefs.PriceTiers[types.PriceModerate], "explicit tiers replace defaults")
	require.Contains(t, prefs.Interests, "culture")
	assert.True(t, prefs.Interests["culture"]["museums"])
	assert.False(t, prefs.Interests["culture"]["opera"])
	assert.Equal(t, types.PacePacked, prefs.Pace)
	assert.Equal(t, types.GroupFamily, prefs.GroupType)
	assert.Equal(t, 5, prefs.ActivityLevel)
}

func TestNormalize_ModernPriceTierAlias(t *testing.T) {
	prefs := Normalize([]byte(`{"priceTier": ["upscale"]}`))

	assert.True(t, prefs.PriceTiers[types.PriceUpscale])
	assert.False(t, prefs.PriceTiers[types.PriceModerate])
}

func TestNormalize_LegacyPayload(t *testing.T) {
	raw := []byte(`{
		"cuisine": "Thai, Mexican",
		"budget": "budget,moderate",
		"interests": "museums,hiking,karaoke",
		"pace": "relaxed",
		"travel_group": "solo",
		"activity": 2
	}`)

	prefs := Normalize(raw)

	assert.True(t, prefs.Cuisines["thai"])
	assert.True(t, prefs.Cuisines["mexican"])
	assert.True(t, prefs.PriceTiers[types.PriceBudget])
	assert.True(t, prefs.PriceTiers[types.PriceModerate])
	assert.True(t, prefs.Interests["culture"]["museums"])
	assert.True(t, prefs.Interests["outdoors"]["hiking"])
	assert.True(t, prefs.Interests["general"]["karaoke"], "unknown legacy tags land in general")
	assert.Equal(t, types.PaceRelaxed, prefs.Pace)
	assert.Equal(t, types.GroupSolo, prefs.GroupType)
	assert.Equal(t, 2, prefs.ActivityLevel)
}

func TestNormalize_InvalidEnumValuesKeepDefaults(t *testing.T) {
	prefs := Normalize([]byte(`{
		"priceTiers": ["platinum"],
		"pace": "frantic",
		"groupType": "flashmob",
		"activityLevel": 11
	}`))

	assert.Equal(t, types.PaceBalanced, prefs.Pace)
	assert.Equal(t, types.GroupCouple, prefs.GroupType)
	assert.Equal(t, 3, prefs.ActivityLevel)
	assert.True(t, prefs.PriceTiers[types.PriceModerate], "unparseable tiers keep the default set")
}

func TestNormalize_Deterministic(t *testing.T) {
	raw := []byte(`{"cuisines": ["sushi"], "interests": {"dining": {"wine": true}}}`)

	first := Normalize(raw)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Normalize(raw))
	}
}

func TestInterestTags_SortedAndFiltered(t *testing.T) {
	prefs := Normalize([]byte(`{"interests": {"culture": {"museums": true, "opera": false}, "outdoors": {"hiking": true}}}`))

	assert.Equal(t, []string{"hiking", "museums"}, prefs.InterestTags())
}
