// Package session keeps the server-side session records behind the signed
// session cookie. Records live in the database by default or in redis.
package session

import (
	"context"
	"errors"
	"time"

	"campus-complaints/internal/models"
)

var ErrNotFound = errors.New("session not found")

// Store persists session records. Implementations must be safe for
// concurrent use.
type Store interface {
	Create(ctx context.Context, userID uint, ttl time.Duration) (*models.Session, error)
	// Get returns ErrNotFound for unknown ids. Expired or revoked records may
	// still be returned; callers check Session.Active.
	Get(ctx context.Context, id string) (*models.Session, error)
	Revoke(ctx context.Context, id string) error
	SetFlash(ctx context.Context, id, msg string) error
	// PopFlash returns the pending flash message and clears it.
	PopFlash(ctx context.Context, id string) (string, error)
}
