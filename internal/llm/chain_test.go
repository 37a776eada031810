package llm

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/trip-guide/internal/types"
)

type fakeGenerator struct {
	name  string
	text  *types.GuideText
	err   error
	calls int
}

func (f *fakeGenerator) Name() string { return f.name }

func (f *fakeGenerator) Generate(_ context.Context, _ *types.TripFacts, _ types.CanonicalPreferences) (*types.GuideText, error) {
	f.calls++
	return f.text, f.err
}

func testFacts() *types.TripFacts {
	return &types.TripFacts{
		TripID:        "trip-1",
		Destination:   "Lisbon",
		StartDate:     time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		TravelerCount: 2,
	}
}

func TestChain_FirstProviderWins(t *testing.T) {
	first := &fakeGenerator{name: "first", text: &types.GuideText{Summary: "from first"}}
	second := &fakeGenerator{name: "second", text: &types.GuideText{Summary: "from second"}}
	chain := NewChain(time.Second, first, second)

	res, err := chain.Generate(context.Background(), testFacts(), *defaultPrefs())
	require.NoError(t, err)
	assert.Equal(t, "first", res.Provider)
	assert.Equal(t, "from first", res.Text.Summary)
	assert.Equal(t, 0, second.calls, "later providers are not consulted on success")
}

func TestChain_FallsThroughOnError(t *testing.T) {
	broken := &fakeGenerator{name: "broken", err: fmt.Errorf("quota exceeded")}
	chain := NewChain(time.Second, broken, NewTemplateGenerator())

	res, err := chain.Generate(context.Background(), testFacts(), *defaultPrefs())
	require.NoError(t, err)
	assert.Equal(t, "template", res.Provider)
	assert.Equal(t, 1, broken.calls)
}

func TestChain_TemplateTerminatedChainNeverFails(t *testing.T) {
	a := &fakeGenerator{name: "a", err: fmt.Errorf("down")}
	b := &fakeGenerator{name: "b", err: fmt.Errorf("also down")}
	chain := NewChain(time.Second, a, b, NewTemplateGenerator())

	for i := 0; i < 5; i++ {
		res, err := chain.Generate(context.Background(), testFacts(), *defaultPrefs())
		require.NoError(t, err)
		require.NotNil(t, res.Text)
		assert.Equal(t, "template", res.Provider)
	}
}

func TestChain_AllFail(t *testing.T) {
	chain := NewChain(time.Second,
		&fakeGenerator{name: "a", err: fmt.Errorf("down")},
		&fakeGenerator{name: "b", err: fmt.Errorf("down too")},
	)

	res, err := chain.Generate(context.Background(), testFacts(), *defaultPrefs())
	assert.Error(t, err)
	assert.Nil(t, res)
}

func TestChain_NoGenerators(t *testing.T) {
	chain := NewChain(time.Second)

	_, err := chain.Generate(context.Background(), testFacts(), *defaultPrefs())
	assert.Error(t, err)
}

func TestChain_CanceledContextStopsWalk(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fallback := &fakeGenerator{name: "fallback", text: &types.GuideText{}}
	chain := NewChain(time.Second, &fakeGenerator{name: "a", err: fmt.Errorf("down")}, fallback)

	_, err := chain.Generate(ctx, testFacts(), *defaultPrefs())
	assert.Error(t, err)
	assert.Equal(t, 0, fallback.calls, "teardown must not burn remaining provider timeouts")
}

func defaultPrefs() *types.CanonicalPreferences {
	return &types.CanonicalPreferences{
		Cuisines:      map[string]bool{},
		PriceTiers:    map[types.PriceTier]bool{types.PriceModerate: true},
		Interests:     map[string]map[string]bool{},
		Pace:          types.PaceBalanced,
		GroupType:     types.GroupCouple,
		ActivityLevel: 3,
	}
}
