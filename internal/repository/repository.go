package repository

import "errors"

// ErrNotFound is returned when a property id is not in the catalog.
var ErrNotFound = errors.New("property not found")
