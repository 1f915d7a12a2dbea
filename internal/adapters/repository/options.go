package repository

import "time"

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithSnapshotInterval publishes a snapshot on this interval. Zero disables
// the background publisher; Publish can still be called directly.
func WithSnapshotInterval(interval time.Duration) Option {
	return func(s *TreapStore) {
		if interval >= 0 {
			s.snapshotInterval = interval
		}
	}
}

// WithTopCacheSize sets how many leading entries a snapshot keeps.
func WithTopCacheSize(size int) Option {
	return func(s *TreapStore) {
		if size > 0 {
			s.topCacheSize = size
		}
	}
}
