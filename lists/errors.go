package lists

import "fmt"

var (
	// ErrNotFound covers every call site spec.md groups under
	// "NotFound": a missing key, a stale or empty list, an
	// out-of-range index, or LRem finding no match. LInsert reports a
	// missing pivot as -1 with a nil error instead.
	ErrNotFound = addPrefix("not found")

	// ErrNotImplemented is returned by the stub entry points carried
	// over from the source as no-ops: Scan, Expireat, Persist, TTL.
	ErrNotImplemented = addPrefix("not implemented")
)

func addPrefix(msg string) error {
	return fmt.Errorf("blackwidow/lists: %s", msg)
}
