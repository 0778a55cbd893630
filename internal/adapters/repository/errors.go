package repository

import "errors"

// Sentinel kinds for history store errors.
var (
	ErrDuplicateID = errors.New("pattern id already stored")
)
