package storage

import (
	"errors"
	"fmt"
)

// Kind classifies a storage failure.
type Kind int

const (
	// KindInit means the database could not be opened or the schema applied.
	// Callers treat it as fatal.
	KindInit Kind = iota + 1
	// KindWrite means an insert, update or delete failed.
	KindWrite
	// KindRead means a query failed.
	KindRead
)

func (k Kind) String() string {
	switch k {
	case KindInit:
		return "init"
	case KindWrite:
		return "write"
	case KindRead:
		return "read"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinels for errors.Is checks against a *Error of the matching kind.
var (
	ErrInit  = errors.New("storage init failed")
	ErrWrite = errors.New("storage write failed")
	ErrRead  = errors.New("storage read failed")
)

// Error is returned by every SQLiteStore operation that fails.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInit:
		return e.Kind == KindInit
	case ErrWrite:
		return e.Kind == KindWrite
	case ErrRead:
		return e.Kind == KindRead
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

func initErr(op string, err error) error  { return &Error{Kind: KindInit, Op: op, Err: err} }
func writeErr(op string, err error) error { return &Error{Kind: KindWrite, Op: op, Err: err} }
func readErr(op string, err error) error  { return &Error{Kind: KindRead, Op: op, Err: err} }
