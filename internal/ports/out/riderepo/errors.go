package riderepo

import "errors"

var (
	ErrNotFound      = errors.New("ride not found")
	ErrAlreadyExists = errors.New("ride already exists")
)
