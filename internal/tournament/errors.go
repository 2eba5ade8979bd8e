package tournament

import (
	"errors"
	"fmt"

	"github.com/trentd187/domino-tournament/internal/seating"
	"github.com/trentd187/domino-tournament/internal/store"
)

// Kind classifies a failure so callers can react without parsing messages.
type Kind string

const (
	// KindValidation: the input was rejected before anything was written.
	KindValidation Kind = "validation"
	// KindConflict: the request is valid but the tournament state does not allow it.
	KindConflict Kind = "conflict"
	// KindNotFound: the player, round or table does not exist.
	KindNotFound Kind = "not_found"
	// KindStore: the store failed. The only kind worth retrying.
	KindStore Kind = "store"
)

// storeMessage is shown for every store failure; the cause goes to the log.
const storeMessage = "the tournament store is unavailable, try again"

// Error is returned by every Service method.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether repeating the operation may succeed.
func (e *Error) Retryable() bool { return e.Kind == KindStore }

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// classify turns an error from the store or seating packages into an *Error.
func classify(err error) *Error {
	var e *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &e):
		return e
	case errors.Is(err, store.ErrNotFound):
		return &Error{Kind: KindNotFound, Message: err.Error(), Err: err}
	case errors.Is(err, store.ErrRosterFull),
		errors.Is(err, store.ErrRoundHasScores),
		errors.Is(err, store.ErrDuplicate),
		errors.Is(err, seating.ErrNotEnoughPlayers),
		errors.Is(err, seating.ErrNotEnoughPairs),
		errors.Is(err, seating.ErrNoPreviousRound):
		return &Error{Kind: KindConflict, Message: err.Error(), Err: err}
	case errors.Is(err, seating.ErrInvalidAssignment):
		return &Error{Kind: KindValidation, Message: err.Error(), Err: err}
	default:
		return &Error{Kind: KindStore, Message: storeMessage, Err: err}
	}
}
