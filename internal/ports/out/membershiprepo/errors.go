package membershiprepo

import "errors"

var (
	// ErrNotFound indicates no membership exists for the (ride, user) pair.
	ErrNotFound = errors.New("membership not found")

	// ErrAlreadyExists indicates a membership already exists for the (ride, user) pair.
	ErrAlreadyExists = errors.New("membership already exists")
)
