package types

import (
	"sort"
)

// PriceTier buckets dining and activity recommendations by cost.
type PriceTier string

// Price tier constants, ordered cheapest first.
const (
	PriceBudget   PriceTier = "budget"
	PriceModerate PriceTier = "moderate"
	PriceUpscale  PriceTier = "upscale"
	PriceLuxury   PriceTier = "luxury"
)

// Pace controls how densely the itinerary is packed.
type Pace string

// Pace constants.
const (
	PaceRelaxed  Pace = "relaxed"
	PaceBalanced Pace = "balanced"
	PacePacked   Pace = "packed"
)

// GroupType describes who is traveling.
type GroupType string

// Group type constants.
const (
	GroupSolo    GroupType = "solo"
	GroupCouple  GroupType = "couple"
	GroupFamily  GroupType = "family"
	GroupFriends GroupType = "friends"
)

// CanonicalPreferences is the single normalized preference record consumed
// by the generation pipeline. It is always fully populated: the normalizer
// fills every field with a documented default when the client payload is
// silent, so no downstream stage branches on missing data.
type CanonicalPreferences struct {
	Cuisines      map[string]bool            `json:"cuisines"`
	PriceTiers    map[PriceTier]bool         `json:"price_tiers"`
	Interests     map[string]map[string]bool `json:"interests"`
	Pace          Pace                       `json:"pace"`
	GroupType     GroupType                  `json:"group_type"`
	ActivityLevel int                        `json:"activity_level"`
}

// InterestTags returns all enabled interest tags across categories,
// sorted for deterministic output.
func (p *CanonicalPreferences) InterestTags() []string {
	var tags []string
	for _, group := range p.Interests {
		for tag, on := range group {
			if on {
				tags = append(tags, tag)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// CuisineList returns the enabled cuisines sorted alphabetically.
func (p *CanonicalPreferences) CuisineList() []string {
	var out []string
	for c, on := range p.Cuisines {
		if on {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// TierList returns the enabled price tiers in cheapest-first order.
func (p *CanonicalPreferences) TierList() []PriceTier {
	order := []PriceTier{PriceBudget, PriceModerate, PriceUpscale, PriceLuxury}
	var out []PriceTier
	for _, t := range order {
		if p.PriceTiers[t] {
			out = append(out, t)
		}
	}
	return out
}
