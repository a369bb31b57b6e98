package opcom

import (
	"errors"
	"fmt"
)

// ErrNotPublished is returned when the export endpoint answers but the
// requested day has no hourly section yet. Expected for tomorrow's
// series before the publication cutoff.
var ErrNotPublished = errors.New("day-ahead prices not yet published")

// StatusError is a non-2xx answer from the export endpoint.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("opcom returned status %d", e.StatusCode)
}

// ParseError is a payload that was delivered but cannot be read as a
// PZU report.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing opcom csv: %s", e.Reason)
}

// NormalizeError is a parsed series that violates the hourly contract
// for its delivery day.
type NormalizeError struct {
	Reason string
}

func (e *NormalizeError) Error() string {
	return fmt.Sprintf("normalizing price series: %s", e.Reason)
}
