package crawler

import "errors"

// Fetch classification errors. A rejection is a final verdict on the page,
// not a fault: the page is skipped and must never be retried. Transport
// faults are returned as ordinary wrapped errors and are recognizable by
// not matching IsRejected.
var (
	// ErrRejectedStatus means the response status was outside the 2xx range.
	ErrRejectedStatus = errors.New("fetch rejected: non-success status")

	// ErrRejectedContentType means the declared content type is not HTML.
	ErrRejectedContentType = errors.New("fetch rejected: not an HTML content type")
)

// IsRejected reports whether err is a definitive rejection rather than a
// transport failure.
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejectedStatus) || errors.Is(err, ErrRejectedContentType)
}
