package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hotelos/internal/adapters/observability"
	"hotelos/internal/domain"
)

// StayQuery locates the single active stay to settle, by room number or by
// stay code. Exactly one field should be set; stay code wins when both are.
type StayQuery struct {
	RoomNumber string
	StayCode   string
}

// StayQuote is the advisory settlement preview shown at the desk. It is
// recomputed fresh inside the checkout transaction before anything is
// written.
type StayQuote struct {
	StayID       int64
	StayCode     string
	GuestName    string
	GuestMobile  string
	RoomNumber   string
	RoomCategory string
	CheckIn      time.Time
	Bill         domain.Bill
}

type CheckOutRequest struct {
	StayID      int64
	Discount    domain.Money
	PaymentMode string
}

type CheckOutResult struct {
	StayCode      string
	FinalPayable  domain.Money
	Discount      domain.Money
	CreditCarried domain.Money // overpayment held as credit, refunded out of band
	NewRoomStatus domain.RoomStatus
	Bill          domain.Bill
}

// CheckOutService settles a stay: fresh bill, discount clamp, final ledger
// entry, stay closure and room release, all in one transaction. Any failure
// leaves the stay active and the room occupied, so the operation is safe to
// retry.
type CheckOutService struct {
	store domain.Store // non-transactional reads for search
	tx    domain.TxRunner
	cache domain.Cache
	now   func() time.Time
}

func NewCheckOutService(store domain.Store, tx domain.TxRunner, cache domain.Cache) *CheckOutService {
	return &CheckOutService{store: store, tx: tx, cache: cache, now: time.Now}
}

func (s *CheckOutService) SearchActiveStay(ctx context.Context, id domain.Identity, q StayQuery) (StayQuote, error) {
	var (
		as  domain.ActiveStay
		err error
	)
	switch {
	case strings.TrimSpace(q.StayCode) != "":
		as, err = s.store.ActiveStayByCode(ctx, id.TenantID, strings.TrimSpace(q.StayCode))
	case strings.TrimSpace(q.RoomNumber) != "":
		as, err = s.store.ActiveStayByRoomNumber(ctx, id.TenantID, strings.TrimSpace(q.RoomNumber))
	default:
		return StayQuote{}, fmt.Errorf("room number or stay code is required: %w", domain.ErrValidation)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return StayQuote{}, domain.ErrNoActiveStay
		}
		return StayQuote{}, err
	}
	return newStayQuote(as, s.now()), nil
}

func (s *CheckOutService) CheckOut(ctx context.Context, id domain.Identity, req CheckOutRequest) (CheckOutResult, error) {
	if req.StayID <= 0 {
		return CheckOutResult{}, fmt.Errorf("stay id is required: %w", domain.ErrValidation)
	}
	if req.Discount < 0 {
		return CheckOutResult{}, fmt.Errorf("discount cannot be negative: %w", domain.ErrValidation)
	}
	if req.PaymentMode == "" {
		req.PaymentMode = "cash"
	}

	now := s.now()
	var (
		res    CheckOutResult
		mobile string
	)
	err := s.tx.WithTx(ctx, func(store domain.Store) error {
		// Reread inside the transaction: a stale search result must not let a
		// second checkout through after the first commits.
		as, err := store.ActiveStayByID(ctx, id.TenantID, req.StayID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNoActiveStay
			}
			return err
		}
		mobile = as.GuestMobile

		bill := domain.ComputeBill(as.RoomBaseRate, as.CheckIn, now, as.PaidAmount)
		discount := domain.ClampDiscount(req.Discount, bill.PendingDue)
		final := bill.PendingDue - discount
		var credit domain.Money
		if final < 0 {
			// Overpayment carries forward as a credit; never a negative entry.
			credit, final = -final, 0
		}

		if final > 0 {
			_, err := store.InsertLedgerEntry(ctx, domain.LedgerEntry{
				TenantID:      id.TenantID,
				StayID:        as.ID,
				InvoiceNumber: newInvoiceNumber(),
				Category:      domain.LedgerFinalSettlement,
				Amount:        final,
				PaymentMode:   req.PaymentMode,
				Note:          "Final payment at checkout",
			})
			if err != nil {
				return err
			}
		}

		if err := store.CompleteStay(ctx, id.TenantID, as.ID, final, now); err != nil {
			return err
		}

		// Write-time reconciliation: the ledger must add up to the settled
		// amount before we are allowed to commit.
		ledger, err := store.LedgerTotal(ctx, id.TenantID, as.ID)
		if err != nil {
			return err
		}
		if ledger != as.PaidAmount+final {
			return fmt.Errorf("stay %s: ledger %d vs settled %d: %w",
				as.Code, ledger, as.PaidAmount+final, domain.ErrLedgerMismatch)
		}

		if err := store.ReleaseRoom(ctx, id.TenantID, as.RoomID); err != nil {
			return err
		}

		res = CheckOutResult{
			StayCode:      as.Code,
			FinalPayable:  final,
			Discount:      discount,
			CreditCarried: credit,
			NewRoomStatus: domain.RoomDirty,
			Bill:          bill,
		}
		return nil
	})
	if err != nil {
		observability.ObserveCheckOut(outcome(err))
		if domain.IsInvariant(err) {
			log.Error().Int64("tenant", id.TenantID).Int64("stay", req.StayID).Err(err).
				Msg("checkout invariant violation")
		}
		return CheckOutResult{}, fmt.Errorf("checkout failed: %w", err)
	}
	observability.ObserveCheckOut("ok")

	if s.cache != nil {
		_ = s.cache.Del(ctx, availableRoomsKey(id.TenantID))
		if mobile != "" {
			_ = s.cache.Del(ctx, guestKey(id.TenantID, mobile))
		}
	}
	return res, nil
}

func newStayQuote(as domain.ActiveStay, now time.Time) StayQuote {
	return StayQuote{
		StayID:       as.ID,
		StayCode:     as.Code,
		GuestName:    as.GuestName,
		GuestMobile:  as.GuestMobile,
		RoomNumber:   as.RoomNumber,
		RoomCategory: as.RoomCategory,
		CheckIn:      as.CheckIn,
		Bill:         domain.ComputeBill(as.RoomBaseRate, as.CheckIn, now, as.PaidAmount),
	}
}
