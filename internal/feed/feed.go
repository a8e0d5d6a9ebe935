// Package feed fetches and parses the upstream fixtures API, and keeps the
// match store refreshed on a per-date cadence.
//
// Each date is fetched independently; a failed or missing date never touches
// the records already held for it, so transient upstream errors degrade to
// stale data rather than missing data.
package feed

import (
	"errors"
	"fmt"
)

// ErrNotFound means the upstream has no fixtures for the requested date.
// Callers treat it as an empty day, not a failure.
var ErrNotFound = errors.New("no fixtures found for date")

// ErrUnavailable means the upstream could not be reached or answered with a
// server error. Existing records for the date are kept as-is.
var ErrUnavailable = errors.New("fixtures feed unavailable")

// DataShapeError reports a payload that decoded but did not look like a
// fixtures response. The offending entity is skipped, not the whole date.
type DataShapeError struct {
	Entity string
	Detail string
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("unexpected feed data shape in %s: %s", e.Entity, e.Detail)
}
