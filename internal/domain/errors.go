package domain

import "errors"

// Sentinels map onto the failure taxonomy: validation (reject before any
// transaction), conflict (retry after re-reading state), not found, and
// invariant violations (data drift; logged loudly, surfaced as generic
// failures). Persistence errors pass through wrapped driver errors.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrRoomUnavailable   = errors.New("room is not available")
	ErrNoActiveStay      = errors.New("no active stay")
	ErrInvalidTransition = errors.New("illegal room status transition")
	ErrDuplicateStayCode = errors.New("stay code already exists")
	ErrLedgerMismatch    = errors.New("ledger total does not match settled amount")
)

// IsConflict reports whether err is safe to retry after the caller re-reads
// current state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrRoomUnavailable) || errors.Is(err, ErrNoActiveStay) || errors.Is(err, ErrDuplicateStayCode)
}

// IsInvariant reports whether err indicates data drift that must never be
// silently ignored.
func IsInvariant(err error) bool {
	return errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrLedgerMismatch)
}
