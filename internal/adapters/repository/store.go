// Package repository keeps charts ranked by one difficulty rating.
package repository

import (
	"context"

	"github.com/okian/strain/internal/domain/model"
)

// Entry is a ranking row.
type Entry = model.Entry

// Store provides read/write access to the ranking state.
type Store interface {
	// UpdateBest sets a chart's rating if it is higher than the stored one.
	// It reports whether the stored rating changed.
	UpdateBest(ctx context.Context, chartID string, rating float64) (bool, error)

	// Set stores a chart's rating unconditionally.
	Set(ctx context.Context, chartID string, rating float64) error

	// Remove drops a chart. Returns ErrNotFound if it is unknown.
	Remove(ctx context.Context, chartID string) error

	// Rank returns the current rank and rating for a chart.
	// Returns ErrNotFound if the chart is unknown.
	Rank(ctx context.Context, chartID string) (Entry, error)

	// TopN returns the top-N entries ordered by rating desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of ranked charts.
	Count(ctx context.Context) int
}
