package core

import "errors"

// ErrMalformedTable is the sentinel wrapped by NewTable and tablefile.Load
// whenever a table's knot padding or stride identity doesn't check out.
// Construction-time errors are returned, never panicked: a malformed table
// usually means corrupt persisted data, not a programmer mistake.
var ErrMalformedTable = errors.New("tensorspline: malformed table")

// ErrInvalidHandle is panicked (via exceptions.Panicf, see dispatch.go) when
// a Handle is used against a Table other than the one it was derived from.
// This is a programmer error, not a data error.
var ErrInvalidHandle = errors.New("tensorspline: evaluation handle used with a different table")
