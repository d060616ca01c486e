package domain

import "time"

// User is the profile record embedded verbatim in ride responses.
// Fields mirror what the accounts system stores; this service treats the
// record as opaque.
type User struct {
	ID UserID

	Name        string
	Profile     string
	Course      string
	PhoneNumber string
	Email       string

	CarOwner bool
	CarModel string
	CarColor string
	CarPlate string

	Location      string
	FaceID        *string
	ProfilePicURL *string

	CreatedAt time.Time
}
