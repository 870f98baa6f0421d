package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Email statuses. An email is pending until a worker claims it, processing
// while claimed, and done once a terminal result is recorded. Processing
// failures are recorded as done with an error classification so clients
// polling the job always converge.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusDone       = "done"
)

type Email struct {
	ID             string
	Title          string
	Content        string
	Status         string
	Classification string
	SuggestedReply string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
