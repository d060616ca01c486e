package feedbackrepo

import "errors"

// ErrNotFound indicates no feedback is attached to the ride.
var ErrNotFound = errors.New("feedback not found")
