package storage

import (
	"context"
	"errors"

	"github.com/Tiliavir/shiftsync/internal/model"
)

// ErrNotFound is returned when a shift ID is unknown to a repository.
var ErrNotFound = errors.New("shift not found")

// Repository is the read/write contract shared by the local cache and the
// remote store.
type Repository interface {
	// List returns every shift stored for the user.
	List(ctx context.Context, userID string) ([]model.Shift, error)
	// Save inserts or updates shifts by ID.
	Save(ctx context.Context, userID string, shifts []model.Shift) error
	// Replace supersedes the user's whole shift list.
	Replace(ctx context.Context, userID string, shifts []model.Shift) error
	// Delete removes a single shift.
	Delete(ctx context.Context, userID, id string) error
}
