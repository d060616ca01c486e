package domain

// MembershipStatus is the closed set of roles a user can hold on a ride.
// Transition guards switch exhaustively over these values so an unknown
// status can never slip through a guard.
type MembershipStatus string

const (
	StatusDriver   MembershipStatus = "driver"
	StatusPending  MembershipStatus = "pending"
	StatusAccepted MembershipStatus = "accepted"
	StatusRejected MembershipStatus = "rejected"
)

// Valid reports whether s is one of the known membership statuses.
func (s MembershipStatus) Valid() bool {
	switch s {
	case StatusDriver, StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}
