package ports

import (
	"context"

	"liftlab/domain/experiment"
)

// RecordSource is the boundary to the ingestion layer. The analysis engine
// only assumes a finite, already-collected set of rows; where they come
// from (event store export, CSV, fixture generator) is the caller's concern.
type RecordSource interface {
	// Records returns every row of the finished experiment. Implementations
	// must not return partial data without an error.
	Records(ctx context.Context) ([]experiment.UserRecord, error)
}

// SliceSource adapts an in-memory record slice to RecordSource
type SliceSource []experiment.UserRecord

func (s SliceSource) Records(ctx context.Context) ([]experiment.UserRecord, error) {
	return s, nil
}
