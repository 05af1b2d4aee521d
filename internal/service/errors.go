package service

import "errors"

// ErrNotFound is returned when the referenced record does not exist.
var ErrNotFound = errors.New("service: not found")

// ErrNotOwner is returned when a record exists but belongs to a different
// client.
var ErrNotOwner = errors.New("service: record does not belong to client")
