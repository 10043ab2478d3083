package patient

import (
	"context"
	"time"
)

// Repository is the persistence contract for the live patient set and the
// shared admission watermark.
type Repository interface {
	// Insert persists one admission atomically. The store assigns ID and
	// arrival_time; both are filled in on the passed record.
	Insert(ctx context.Context, p *Patient) error
	// DeleteArrivedBefore removes every record older than cutoff and returns
	// the number of rows removed. Deleting an empty matching set is a no-op.
	DeleteArrivedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	// ListLive returns the live set ordered by arrival_time descending,
	// capped at limit rows (the aggregator's input window).
	ListLive(ctx context.Context, limit int) ([]*Patient, error)
	// ListLivePage returns one page of the live feed plus the total count.
	ListLivePage(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	// TryAdvanceGate advances the shared admission watermark to now if at
	// least minInterval has elapsed since the previous admission. It reports
	// whether this caller won the gate. The check-and-set is a single atomic
	// statement so independent producers observe one global gate.
	TryAdvanceGate(ctx context.Context, now time.Time, minInterval time.Duration) (bool, error)
}
