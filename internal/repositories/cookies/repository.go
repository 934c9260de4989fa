// Package cookies stores the encoded roster cookie per session
package cookies

//go:generate mockgen -destination=mock/mock_repository.go -package=cookiesmock github.com/KirkDiggler/initiative-tracker/internal/repositories/cookies Repository

import (
	"context"
	"time"
)

// DefaultTTL keeps a stored roster for a year after its last save
const DefaultTTL = 365 * 24 * time.Hour

// Repository defines cookie persistence. Values are opaque strings produced
// by the cookie codec.
type Repository interface {
	// Get returns the stored cookie for a session
	// Returns errors.InvalidArgument for an empty session id
	// Returns errors.NotFound if nothing is stored or the cookie expired
	// Returns errors.Internal for storage failures
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Save stores the cookie and restarts its lifetime
	// Returns errors.InvalidArgument for an empty session id
	// Returns errors.Internal for storage failures
	Save(ctx context.Context, input SaveInput) (*SaveOutput, error)

	// Delete removes the cookie; deleting a missing cookie succeeds
	// Returns errors.InvalidArgument for an empty session id
	// Returns errors.Internal for storage failures
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}

// GetInput defines the input for reading a cookie
type GetInput struct {
	SessionID string
}

// GetOutput defines the output for reading a cookie
type GetOutput struct {
	Value     string
	ExpiresAt time.Time
}

// SaveInput defines the input for storing a cookie
type SaveInput struct {
	SessionID string
	Value     string
}

// SaveOutput defines the output for storing a cookie
type SaveOutput struct {
	ExpiresAt time.Time
}

// DeleteInput defines the input for removing a cookie
type DeleteInput struct {
	SessionID string
}

// DeleteOutput defines the output for removing a cookie
type DeleteOutput struct{}

const errSessionIDEmpty = "session ID cannot be empty"
