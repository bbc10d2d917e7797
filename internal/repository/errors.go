// Package repository stores the classroom entities as JSON documents in
// named collections.  The sentinel errors below let higher layers such
// as handlers tell the failure cases apart without inspecting driver
// errors.
package repository

import "errors"

// ErrNotFound is returned when no document exists for an id.  Handlers
// translate it into an HTTP 404 response.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when an insert reuses an id that is already
// stored in the collection.  Handlers translate it into HTTP 409.
var ErrConflict = errors.New("conflict")
