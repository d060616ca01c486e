package domain

import "time"

// Ride is the domain read model for a single scheduled trip.
//
// A recurring series ("routine") is a set of rides sharing one RoutineID.
// The origin ride of a series carries RoutineID == nil; every sibling points
// at the origin's ID. A RoutineID equal to the ride's own ID is invalid.
type Ride struct {
	ID RideID

	Zone         string
	Neighborhood string
	// Going distinguishes trips toward the hub (true) from trips away from
	// it (false).
	Going       bool
	Place       string
	Route       string
	Description string
	Hub         string
	Slots       int

	Date time.Time

	// WeekDays and RepeatsUntil are either both set (recurring series) or
	// both unset (one-off ride). Every member of a series carries them.
	WeekDays     []time.Weekday
	RepeatsUntil *time.Time
	RoutineID    *RideID

	Done bool
}

// RideWithDriver pairs a ride with its driver's profile for listings.
type RideWithDriver struct {
	Ride
	Driver User
}

// RideDetails is the enriched read model returned by the history query.
type RideDetails struct {
	Ride

	Driver   User
	Riders   []User
	Feedback *Feedback
}

// Feedback is an optional note attached to a completed ride by a rider.
// The service stores and surfaces it without interpreting its content.
type Feedback struct {
	RideID  RideID
	UserID  UserID
	Comment string

	CreatedAt time.Time
}

// HistoryCounts summarizes a user's completed rides.
type HistoryCounts struct {
	OfferedCount int
	TakenCount   int
}
