// Package types defines the shared data model for trip guide generation.
package types

import (
	"fmt"
	"time"
)

// TripFacts holds the structured facts known about a trip before generation.
// It is the read-only input every pipeline stage works from.
type TripFacts struct {
	TripID        string    `json:"trip_id"`
	Destination   string    `json:"destination"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	TravelerCount int       `json:"traveler_count"`
	Flights       []Flight  `json:"flights,omitempty"`
	Hotels        []Hotel   `json:"hotels,omitempty"`
}

// Flight is a single flight segment attached to a trip.
type Flight struct {
	Carrier   string    `json:"carrier"`
	Number    string    `json:"number"`
	Origin    string    `json:"origin"`
	Departure time.Time `json:"departure"`
	Arrival   time.Time `json:"arrival"`
}

// Hotel is a lodging reservation attached to a trip.
type Hotel struct {
	Name     string    `json:"name"`
	Address  string    `json:"address,omitempty"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// Days returns the number of itinerary days covered by the trip's date
// range, inclusive of both endpoints. A trip with equal start and end
// dates is a one-day trip.
func (f *TripFacts) Days() int {
	if f.EndDate.Before(f.StartDate) {
		return 0
	}
	return int(f.EndDate.Sub(f.StartDate).Hours()/24) + 1
}

// Validate checks that the facts are usable as pipeline input.
func (f *TripFacts) Validate() error {
	if f.TripID == "" {
		return fmt.Errorf("trip facts: trip_id is required")
	}
	if f.Destination == "" {
		return fmt.Errorf("trip facts: destination is required")
	}
	if f.Days() == 0 {
		return fmt.Errorf("trip facts: end_date must not be before start_date")
	}
	return nil
}
