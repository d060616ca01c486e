package notifier

import (
	"context"

	"github.com/campus-carpool/rides-api/internal/domain"
)

// EventKind enumerates the workflow transitions that trigger notifications.
type EventKind string

const (
	EventJoinRequested EventKind = "join_requested"
	EventJoinAccepted  EventKind = "join_accepted"
	EventJoinRejected  EventKind = "join_rejected"
	EventRideCancelled EventKind = "ride_cancelled"
	EventMemberLeft    EventKind = "member_left"
	EventChatMessage   EventKind = "chat_message"
)

// Event is the payload handed to the notification gateway. The gateway owns
// delivery; the core never inspects the outcome.
type Event struct {
	Kind    EventKind
	RideID  domain.RideID
	ActorID domain.UserID
	Message string
}

// Gateway delivers push notifications and chat relays. Calls are best-effort
// side effects fired after state changes commit; errors are logged by the
// caller and never surfaced to users.
type Gateway interface {
	NotifyUser(ctx context.Context, userID domain.UserID, ev Event) error

	// NotifyRideMembers fans the event out to every member of the ride
	// except the excluded user (typically the actor).
	NotifyRideMembers(ctx context.Context, rideID domain.RideID, exclude domain.UserID, ev Event) error
}
