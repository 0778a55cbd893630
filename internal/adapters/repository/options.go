// Package repository defines the target history store interface and its
// implementations.
package repository

import "time"

// Default store configuration constants.
const defaultInitialCapacity = 256

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithInitialCapacity pre-sizes the backing slice.
func WithInitialCapacity(n int) Option {
	return func(s *MemStore) {
		if n > 0 {
			s.initialCapacity = n
		}
	}
}

// nowFunc returns the current time; a variable so tests can pin the clock
// when exercising date filters.
var nowFunc = time.Now
