package domain

// UserID identifies a community member. User records are owned by the
// accounts system; this service reads them and embeds them in responses,
// never mutates them.
type UserID string

// RideID is an internal identifier for a ride record.
type RideID string
