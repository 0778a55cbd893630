// Package repository defines the target history store interface and its
// implementations.
package repository

import (
	"context"

	"github.com/mjelle/shotgroup/internal/domain/model"
)

// Store provides append-only access to analyzed target history. Reads are
// most-recent-first and must observe a preceding append from the same caller
// immediately (no eventual consistency).
type Store interface {
	// Append inserts a pattern. It never overwrites: appending an id that is
	// already stored returns ErrDuplicateID.
	Append(ctx context.Context, pattern model.StoredTargetPattern) error

	// Query returns patterns whose timestamp falls in the filter's window and
	// whose session type is in sessions (nil or empty slice disables session
	// filtering). FilterLastTarget returns at most the single most recent
	// pattern, honoring only the session filter. An empty store yields an
	// empty slice, never an error.
	Query(ctx context.Context, filter model.DateFilter, sessions []model.SessionType) ([]model.StoredTargetPattern, error)

	// Delete removes one entry by id. Absent ids are a no-op.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored patterns.
	Count(ctx context.Context) int
}

// sessionNameSet builds the lookup used by the store implementations to
// apply the session-type filter.
func sessionNameSet(sessions []model.SessionType) map[string]bool {
	if len(sessions) == 0 {
		return nil
	}
	set := make(map[string]bool, len(sessions))
	for _, s := range sessions {
		set[s.Name] = true
	}
	return set
}
