// Package preferences maps client-submitted preference payloads into the
// canonical record consumed by the generation pipeline.
//
// Two payload shapes are accepted: the current nested format and the legacy
// flat format produced by older clients. Normalize is total and
// deterministic: any payload, including garbage or an empty object, yields a
// fully populated CanonicalPreferences with documented defaults, so it can
// never be a source of pipeline failure.
package preferences

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/trip-guide/internal/types"
)

// Defaults applied when a field is absent from the payload:
// price tiers {moderate, upscale}, pace balanced, group couple,
// activity level 3, empty cuisine and interest sets.
func Defaults() types.CanonicalPreferences {
	return types.CanonicalPreferences{
		Cuisines: map[string]bool{},
		PriceTiers: map[types.PriceTier]bool{
			types.PriceModerate: true,
			types.PriceUpscale:  true,
		},
		Interests:     map[string]map[string]bool{},
		Pace:          types.PaceBalanced,
		GroupType:     types.GroupCouple,
		ActivityLevel: 3,
	}
}

// modernSchema describes the current nested payload. Validation is used to
// classify the shape, not to reject input: unknown fields are ignored and a
// payload matching neither schema still normalizes to defaults.
const modernSchema = `{
	"type": "object",
	"properties": {
		"cuisines":      {"type": "array", "items": {"type": "string"}},
		"priceTiers":    {"type": "array", "items": {"type": "string"}},
		"priceTier":     {"type": "array", "items": {"type": "string"}},
		"interests":     {"type": "object"},
		"pace":          {"type": "string"},
		"groupType":     {"type": "string"},
		"activityLevel": {"type": "integer"}
	}
}`

// legacySchema describes the flat payload accepted from older clients.
const legacySchema = `{
	"type": "object",
	"properties": {
		"cuisine":      {"type": "string"},
		"budget":       {"type": "string"},
		"interests":    {"type": "string"},
		"pace":         {"type": "string"},
		"travel_group": {"type": "string"},
		"activity":     {"type": "integer"}
	}
}`

// modernPayload mirrors the nested client format. PriceTier is an accepted
// alias for PriceTiers kept for clients that predate the rename.
type modernPayload struct {
	Cuisines      []string                   `json:"cuisines"`
	PriceTiers    []string                   `json:"priceTiers"`
	PriceTier     []string                   `json:"priceTier"`
	Interests     map[string]map[string]bool `json:"interests"`
	Pace          string                     `json:"pace"`
	GroupType     string                     `json:"groupType"`
	ActivityLevel int                        `json:"activityLevel"`
}

// legacyPayload mirrors the flat client format, where list-valued fields
// are comma-separated strings and interests carry no category grouping.
type legacyPayload struct {
	Cuisine     string `json:"cuisine"`
	Budget      string `json:"budget"`
	Interests   string `json:"interests"`
	Pace        string `json:"pace"`
	TravelGroup string `json:"travel_group"`
	Activity    int    `json:"activity"`
}

// legacyInterestCategories assigns flat legacy interest tags to the
// categories the nested format uses. Unrecognized tags fall under "general".
var legacyInterestCategories = map[string]string{
	"museums":   "culture",
	"galleries": "culture",
	"history":   "culture",
	"theater":   "culture",
	"parks":     "outdoors",
	"hiking":    "outdoors",
	"beaches":   "outdoors",
	"nightlife": "entertainment",
	"music":     "entertainment",
	"shopping":  "lifestyle",
	"wellness":  "lifestyle",
	"food":      "dining",
	"wine":      "dining",
}

// Normalize converts a raw preference payload into CanonicalPreferences.
// It never fails: unparseable input returns Defaults().
func Normalize(raw []byte) types.CanonicalPreferences {
	prefs := Defaults()
	if len(raw) == 0 {
		return prefs
	}

	doc := gojsonschema.NewBytesLoader(raw)
	if result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(modernSchema), doc); err == nil && result.Valid() {
		var p modernPayload
		if err := json.Unmarshal(raw, &p); err == nil && !isEmptyModern(&p) {
			applyModern(&prefs, &p)
			return prefs
		}
	}

	if result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(legacySchema), doc); err == nil && result.Valid() {
		var p legacyPayload
		if err := json.Unmarshal(raw, &p); err == nil {
			applyLegacy(&prefs, &p)
		}
	}
	return prefs
}

// isEmptyModern reports whether the payload set none of the modern fields,
// in which case legacy interpretation gets a chance.
func isEmptyModern(p *modernPayload) bool {
	return len(p.Cuisines) == 0 && len(p.PriceTiers) == 0 && len(p.PriceTier) == 0 &&
		len(p.Interests) == 0 && p.Pace == "" && p.GroupType == "" && p.ActivityLevel == 0
}

func applyModern(prefs *types.CanonicalPreferences, p *modernPayload) {
	for _, c := range p.Cuisines {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			prefs.Cuisines[c] = true
		}
	}

	tiers := p.PriceTiers
	if len(tiers) == 0 {
		tiers = p.PriceTier
	}
	if parsed := parseTiers(tiers); len(parsed) > 0 {
		prefs.PriceTiers = parsed
	}

	if len(p.Interests) > 0 {
		prefs.Interests = map[string]map[string]bool{}
		for cat, tags := range p.Interests {
			cat = strings.ToLower(strings.TrimSpace(cat))
			if cat == "" || len(tags) == 0 {
				continue
			}
			group := map[string]bool{}
			for tag, on := range tags {
				if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
					group[tag] = on
				}
			}
			prefs.Interests[cat] = group
		}
	}

	if pace, ok := parsePace(p.Pace); ok {
		prefs.Pace = pace
	}
	if group, ok := parseGroup(p.GroupType); ok {
		prefs.GroupType = group
	}
	if p.ActivityLevel >= 1 && p.ActivityLevel <= 5 {
		prefs.ActivityLevel = p.ActivityLevel
	}
}

func applyLegacy(prefs *types.CanonicalPreferences, p *legacyPayload) {
	for _, c := range splitList(p.Cuisine) {
		prefs.Cuisines[c] = true
	}
	if tiers := parseTiers(splitList(p.Budget)); len(tiers) > 0 {
		prefs.PriceTiers = tiers
	}
	if tags := splitList(p.Interests); len(tags) > 0 {
		prefs.Interests = map[string]map[string]bool{}
		for _, tag := range tags {
			cat, ok := legacyInterestCategories[tag]
			if !ok {
				cat = "general"
			}
			if prefs.Interests[cat] == nil {
				prefs.Interests[cat] = map[string]bool{}
			}
			prefs.Interests[cat][tag] = true
		}
	}
	if pace, ok := parsePace(p.Pace); ok {
		prefs.Pace = pace
	}
	if group, ok := parseGroup(p.TravelGroup); ok {
		prefs.GroupType = group
	}
	if p.Activity >= 1 && p.Activity <= 5 {
		prefs.ActivityLevel = p.Activity
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseTiers(values []string) map[types.PriceTier]bool {
	out := map[types.PriceTier]bool{}
	for _, v := range values {
		switch types.PriceTier(strings.ToLower(strings.TrimSpace(v))) {
		case types.PriceBudget:
			out[types.PriceBudget] = true
		case types.PriceModerate:
			out[types.PriceModerate] = true
		case types.PriceUpscale:
			out[types.PriceUpscale] = true
		case types.PriceLuxury:
			out[types.PriceLuxury] = true
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parsePace(s string) (types.Pace, bool) {
	switch types.Pace(strings.ToLower(strings.TrimSpace(s))) {
	case types.PaceRelaxed:
		return types.PaceRelaxed, true
	case types.PaceBalanced:
		return types.PaceBalanced, true
	case types.PacePacked:
		return types.PacePacked, true
	}
	return "", false
}

func parseGroup(s string) (types.GroupType, bool) {
	switch types.GroupType(strings.ToLower(strings.TrimSpace(s))) {
	case types.GroupSolo:
		return types.GroupSolo, true
	case types.GroupCouple:
		return types.GroupCouple, true
	case types.GroupFamily:
		return types.GroupFamily, true
	case types.GroupFriends:
		return types.GroupFriends, true
	}
	return "", false
}
