package domain

import "time"

type StayStatus string

const (
	StayActive    StayStatus = "active"
	StayCompleted StayStatus = "completed"
	StayCancelled StayStatus = "cancelled"
	StayNoShow    StayStatus = "no_show"
)

// Stay is one guest's occupancy of one room, from check-in to check-out.
// status=active implies CheckOut is nil and the room is occupied.
type Stay struct {
	ID          int64
	TenantID    int64
	GuestID     int64
	RoomID      int64
	Code        string // human-readable, unique per tenant (BK…)
	CheckIn     time.Time
	CheckOut    *time.Time // nil while open
	Status      StayStatus
	TotalAmount Money // quoted at check-in
	PaidAmount  Money // settled so far; must equal the ledger sum
	Source      string
}

// ActiveStay is the joined read model the checkout flow works from.
type ActiveStay struct {
	Stay
	GuestName    string
	GuestMobile  string
	RoomNumber   string
	RoomCategory string
	RoomBaseRate Money
}

type LedgerCategory string

const (
	LedgerAdvance         LedgerCategory = "advance"
	LedgerFinalSettlement LedgerCategory = "final_settlement"
)

// LedgerEntry is one immutable payment record tied to a stay. Entries are
// append-only; all are credits received from the guest.
type LedgerEntry struct {
	ID            int64
	TenantID      int64
	StayID        int64
	InvoiceNumber string
	Category      LedgerCategory
	Amount        Money
	PaymentMode   string
	Note          string
	CreatedAt     time.Time
}
