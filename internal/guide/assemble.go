// Package guide assembles the final guide artifact from narrative text,
// enriched item collections, and weather. Assembly is pure: no I/O, and
// the same inputs always yield the same guide.
package guide

import (
	"fmt"
	"time"

	"github.com/jonathan/trip-guide/internal/types"
)

// Input carries everything a successful pipeline run collected.
type Input struct {
	Facts    *types.TripFacts
	Prefs    types.CanonicalPreferences
	Text     *types.GuideText
	Provider string
	Items    map[types.Category][]types.EnrichedItem
	Weather  []types.DayWeather
	Warnings []string
}

// activitySlots orders activities within a day.
var activitySlots = []string{"morning", "afternoon", "evening"}

// Build produces the guide. It fails only when there is no content at all:
// neither narrative text nor any enriched item.
func Build(in Input) (*types.Guide, error) {
	if in.Text == nil && totalItems(in.Items) == 0 {
		return nil, fmt.Errorf("no content available to assemble a guide")
	}
	days := in.Facts.Days()
	if days == 0 {
		return nil, fmt.Errorf("trip has an empty date range")
	}

	g := &types.Guide{
		TripID:      in.Facts.TripID,
		Destination: in.Facts.Destination,
		Items:       in.Items,
		Weather:     in.Weather,
		Provider:    in.Provider,
		Warnings:    in.Warnings,
		GeneratedAt: time.Now().UTC(),
	}
	if in.Text != nil {
		g.Summary = in.Text.Summary
		g.Insights = in.Text.Insights
		g.Citations = in.Text.Citations
	}

	perDay := activitiesPerDay(in.Prefs.Pace, in.Prefs.ActivityLevel)
	dining := in.Items[types.CategoryDining]
	cursor := newItemCursor(in.Items)

	for day := 0; day < days; day++ {
		plan := types.DayPlan{
			Day:   day + 1,
			Date:  in.Facts.StartDate.AddDate(0, 0, day),
			Title: dayTitle(in.Text, day, in.Facts.Destination),
		}
		if day < len(in.Weather) {
			w := in.Weather[day]
			plan.Weather = &w
		}

		for slot := 0; slot < perDay; slot++ {
			category, idx, ok := cursor.next()
			activity := types.Activity{
				TimeOfDay: activitySlots[slot%len(activitySlots)],
				ItemIndex: -1,
			}
			if ok {
				item := in.Items[category][idx]
				activity.Title = item.Name
				activity.Category = category
				activity.ItemIndex = idx
			} else {
				activity.Title = fmt.Sprintf("Explore %s", in.Facts.Destination)
			}
			plan.Activities = append(plan.Activities, activity)
		}

		// One dining suggestion per day, rotating through the collection.
		if len(dining) > 0 {
			idx := day % len(dining)
			plan.Activities = append(plan.Activities, types.Activity{
				TimeOfDay: "dinner",
				Title:     dining[idx].Name,
				Category:  types.CategoryDining,
				ItemIndex: idx,
			})
		}

		g.Days = append(g.Days, plan)
	}
	return g, nil
}

// activitiesPerDay converts pace and activity level into scheduled slots.
func activitiesPerDay(pace types.Pace, level int) int {
	base := 3
	switch pace {
	case types.PaceRelaxed:
		base = 2
	case types.PacePacked:
		base = 4
	}
	if level >= 5 {
		base++
	}
	if level <= 1 && base > 1 {
		base--
	}
	return base
}

// dayTitle prefers the generator's per-day note, falling back to a
// deterministic label.
func dayTitle(text *types.GuideText, day int, destination string) string {
	if text != nil && day < len(text.DayNotes) && text.DayNotes[day] != "" {
		return text.DayNotes[day]
	}
	return fmt.Sprintf("Day %d in %s", day+1, destination)
}

func totalItems(items map[types.Category][]types.EnrichedItem) int {
	n := 0
	for _, list := range items {
		n += len(list)
	}
	return n
}

// itemCursor walks attractions then events round-robin so day plans mix
// categories instead of exhausting one before the next.
type itemCursor struct {
	items   map[types.Category][]types.EnrichedItem
	order   []types.Category
	offsets map[types.Category]int
	turn    int
}

func newItemCursor(items map[types.Category][]types.EnrichedItem) *itemCursor {
	return &itemCursor{
		items:   items,
		order:   []types.Category{types.CategoryAttractions, types.CategoryEvents},
		offsets: make(map[types.Category]int),
	}
}

// next returns the next unused item's category and index within its
// collection, or ok=false when every schedulable item has been placed.
func (c *itemCursor) next() (types.Category, int, bool) {
	for attempts := 0; attempts < len(c.order); attempts++ {
		category := c.order[c.turn%len(c.order)]
		c.turn++
		if idx := c.offsets[category]; idx < len(c.items[category]) {
			c.offsets[category] = idx + 1
			return category, idx, true
		}
	}
	return "", -1, false
}
