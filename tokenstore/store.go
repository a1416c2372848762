package tokenstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Load when no record exists for the profile.
	ErrNotFound = errors.New("tokenstore: record not found")
	// ErrCorruptRecord is returned when a stored record fails decoding.
	ErrCorruptRecord = errors.New("tokenstore: corrupt record")
)

// Store persists one session [Record] per profile. Implementations must be
// safe for concurrent use.
//
// SetAccessToken exists as a separate operation because transparent refresh
// rotates only the access token; stores that support it atomically avoid
// rewriting the whole record mid-flight.
type Store interface {
	Load(ctx context.Context, profileID string) (*Record, error)
	Save(ctx context.Context, profileID string, rec *Record) error
	SetAccessToken(ctx context.Context, profileID, accessToken, refreshToken string) error
	Clear(ctx context.Context, profileID string) error
}
