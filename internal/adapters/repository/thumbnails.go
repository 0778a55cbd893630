package repository

import "context"

// ThumbnailStore associates a display thumbnail with a stored pattern id.
// The engine depends on this interface but never implements it; a real
// backend (filesystem, cloud) lives in the surrounding application. A missing
// thumbnail is a display-only concern and never an error.
type ThumbnailStore interface {
	// Get returns the thumbnail bytes for id, or (nil, nil) when absent.
	Get(ctx context.Context, id string) ([]byte, error)

	// Put stores the thumbnail bytes for id.
	Put(ctx context.Context, id string, data []byte) error
}
