package ftl

import (
	"errors"
	"fmt"
)

var (
	// ErrUnmappedLPN names the case of a read targeting an LPN with no
	// current mapping. No FTL operation returns it: Read skips unmapped
	// io units without reporting them.
	ErrUnmappedLPN = errors.New("ftl: lpn is not mapped")

	// ErrInvalidLPN names the case of an LPN outside
	// [0, total_logical_pages). No FTL operation returns it: an
	// out-of-range LPN panics with a *FatalError.
	ErrInvalidLPN = errors.New("ftl: lpn out of range")

	// ErrEmptyIOMap names the "empty request" edge case: a read or
	// write with zero bits set in its iomap. No FTL operation returns
	// it: Read and Write log a warning, charge CPU latency, and
	// otherwise do nothing.
	ErrEmptyIOMap = errors.New("ftl: request iomap has no bits set")
)

// FatalError reports a precondition violation the simulator has no way
// to recover from: no free block on allocation, an erase issued against
// a block that still has valid pages, or mapping-table corruption. The
// source this module is modeled on aborts the whole process with a
// diagnostic on these; Go code panics with *FatalError instead; a driver
// that wants the same "abort with message" behavior recovers at main.
type FatalError struct {
	Op  string
	Msg string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("ftl: fatal: %s: %s", e.Op, e.Msg)
}

func fatalf(op, format string, args ...any) {
	panic(&FatalError{Op: op, Msg: fmt.Sprintf(format, args...)})
}
