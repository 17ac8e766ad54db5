package domain

import (
	"context"
	"time"
)

// Identity is the authenticated caller, issued by the external session
// collaborator. Every core operation receives it explicitly; the core never
// reads ambient session state.
type Identity struct {
	TenantID  int64
	UserID    int64
	HotelName string
}

// Store is the tenant-scoped persistence port. Implementations must be
// usable both standalone and inside a transaction (see TxRunner): every
// write an orchestrator performs happens against the transactional view.
type Store interface {
	// Guest directory
	FindGuestByMobile(ctx context.Context, tenantID int64, mobile string) (Guest, error)
	InsertGuest(ctx context.Context, g Guest) (int64, error)
	UpdateGuest(ctx context.Context, g Guest) error

	// Room inventory
	ListAvailableRooms(ctx context.Context, tenantID int64) ([]Room, error)
	GetRoom(ctx context.Context, tenantID, roomID int64) (Room, error)
	// ClaimRoom conditionally moves available->occupied and returns
	// ErrRoomUnavailable when the row was not in available state. Must be a
	// single conditional UPDATE checked by affected-row count, never a
	// read-then-write.
	ClaimRoom(ctx context.Context, tenantID, roomID int64) error
	// ReleaseRoom moves occupied->dirty; any other current status is
	// ErrInvalidTransition.
	ReleaseRoom(ctx context.Context, tenantID, roomID int64) error

	// Stays
	InsertStay(ctx context.Context, s Stay) (int64, error)
	ActiveStayByRoomNumber(ctx context.Context, tenantID int64, roomNumber string) (ActiveStay, error)
	ActiveStayByCode(ctx context.Context, tenantID int64, code string) (ActiveStay, error)
	ActiveStayByID(ctx context.Context, tenantID, stayID int64) (ActiveStay, error)
	// CompleteStay conditionally moves active->completed, stamps checkOut and
	// adds settled to paid_amount. Returns ErrNoActiveStay when the stay is
	// no longer active (e.g. a concurrent checkout already committed).
	CompleteStay(ctx context.Context, tenantID, stayID int64, settled Money, checkOut time.Time) error

	// Ledger (append-only)
	InsertLedgerEntry(ctx context.Context, e LedgerEntry) (int64, error)
	LedgerTotal(ctx context.Context, tenantID, stayID int64) (Money, error)
}

// TxRunner opens a bounded-timeout transaction and hands the callback a
// Store view scoped to it. The transaction commits iff fn returns nil;
// any error or context cancellation rolls everything back.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(Store) error) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
