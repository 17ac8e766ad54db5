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

type CheckInRequest struct {
	GuestName      string
	Mobile         string
	Email          string
	CompanyName    string
	GSTNumber      string
	Address        string
	IDType         string
	IDNumber       string
	City           string
	State          string
	RoomID         int64
	Nights         int
	AdvancePayment domain.Money
	PaymentMode    string
}

type CheckInResult struct {
	StayID      int64
	StayCode    string
	GuestID     int64
	QuotedTotal domain.Money
	PendingDue  domain.Money
}

// CheckInService opens a stay: guest upsert, atomic room claim, stay insert
// with a generated code, and the optional advance ledger entry — all in one
// transaction that rolls back as a whole.
type CheckInService struct {
	tx    domain.TxRunner
	cache domain.Cache
	now   func() time.Time
}

func NewCheckInService(tx domain.TxRunner, cache domain.Cache) *CheckInService {
	return &CheckInService{tx: tx, cache: cache, now: time.Now}
}

// stayCodeAttempts bounds the retry loop on the tenant-scoped unique index.
const stayCodeAttempts = 3

func (s *CheckInService) CheckIn(ctx context.Context, id domain.Identity, req CheckInRequest) (CheckInResult, error) {
	// Reject before any transaction is opened.
	if strings.TrimSpace(req.GuestName) == "" {
		return CheckInResult{}, fmt.Errorf("guest name is required: %w", domain.ErrValidation)
	}
	mobile, err := domain.NormalizeMobile(req.Mobile)
	if err != nil {
		return CheckInResult{}, err
	}
	if req.RoomID <= 0 {
		return CheckInResult{}, fmt.Errorf("room selection is required: %w", domain.ErrValidation)
	}
	if req.AdvancePayment < 0 {
		return CheckInResult{}, fmt.Errorf("advance payment cannot be negative: %w", domain.ErrValidation)
	}
	if req.Nights < 1 {
		req.Nights = 1
	}
	if req.PaymentMode == "" {
		req.PaymentMode = "cash"
	}

	now := s.now()
	var res CheckInResult
	err = s.tx.WithTx(ctx, func(store domain.Store) error {
		guestID, err := s.upsertGuest(ctx, store, id.TenantID, mobile, req)
		if err != nil {
			return err
		}

		if err := store.ClaimRoom(ctx, id.TenantID, req.RoomID); err != nil {
			return err
		}
		room, err := store.GetRoom(ctx, id.TenantID, req.RoomID)
		if err != nil {
			return err
		}

		// The quote is authoritative only when computed here, from the stored
		// rate. Client-submitted totals are display hints.
		quoted := domain.Quote(room.BaseRate, req.Nights)

		stay := domain.Stay{
			TenantID:    id.TenantID,
			GuestID:     guestID,
			RoomID:      room.ID,
			CheckIn:     now,
			Status:      domain.StayActive,
			TotalAmount: quoted,
			PaidAmount:  req.AdvancePayment,
			Source:      "walk-in",
		}
		var stayID int64
		for attempt := 1; ; attempt++ {
			stay.Code = newStayCode(now)
			stayID, err = store.InsertStay(ctx, stay)
			if err == nil {
				break
			}
			if errors.Is(err, domain.ErrDuplicateStayCode) && attempt < stayCodeAttempts {
				continue
			}
			return err
		}

		if req.AdvancePayment > 0 {
			_, err := store.InsertLedgerEntry(ctx, domain.LedgerEntry{
				TenantID:      id.TenantID,
				StayID:        stayID,
				InvoiceNumber: newInvoiceNumber(),
				Category:      domain.LedgerAdvance,
				Amount:        req.AdvancePayment,
				PaymentMode:   req.PaymentMode,
				Note:          "Advance payment at check-in",
			})
			if err != nil {
				return err
			}
			ledger, err := store.LedgerTotal(ctx, id.TenantID, stayID)
			if err != nil {
				return err
			}
			if ledger != req.AdvancePayment {
				return fmt.Errorf("stay %s: ledger %d vs settled %d: %w",
					stay.Code, ledger, req.AdvancePayment, domain.ErrLedgerMismatch)
			}
		}

		res = CheckInResult{
			StayID:      stayID,
			StayCode:    stay.Code,
			GuestID:     guestID,
			QuotedTotal: quoted,
			PendingDue:  domain.PendingDue(quoted, req.AdvancePayment),
		}
		return nil
	})
	if err != nil {
		observability.ObserveCheckIn(outcome(err))
		// Only a lost room claim counts as a claim conflict; other conflicts
		// (e.g. code collision exhaustion) have their own outcome label.
		if errors.Is(err, domain.ErrRoomUnavailable) {
			observability.ClaimConflicts.Inc()
		}
		if domain.IsInvariant(err) {
			log.Error().Int64("tenant", id.TenantID).Int64("room", req.RoomID).Err(err).
				Msg("check-in invariant violation")
		}
		return CheckInResult{}, fmt.Errorf("check-in failed: %w", err)
	}
	observability.ObserveCheckIn("ok")

	if s.cache != nil {
		_ = s.cache.Del(ctx, availableRoomsKey(id.TenantID))
		_ = s.cache.Del(ctx, guestKey(id.TenantID, mobile))
	}
	return res, nil
}

// upsertGuest resolves the guest by normalized mobile and updates the profile
// in place, or inserts a fresh record. Runs inside the caller's transaction so
// a later failure rolls the guest write back too.
func (s *CheckInService) upsertGuest(ctx context.Context, store domain.Store, tenantID int64, mobile string, req CheckInRequest) (int64, error) {
	g := domain.Guest{
		TenantID:    tenantID,
		FullName:    strings.TrimSpace(req.GuestName),
		Mobile:      mobile,
		Email:       strings.TrimSpace(req.Email),
		CompanyName: strings.TrimSpace(req.CompanyName),
		GSTNumber:   strings.TrimSpace(req.GSTNumber),
		Address:     strings.TrimSpace(req.Address),
		IDType:      req.IDType,
		IDNumber:    strings.TrimSpace(req.IDNumber),
		City:        strings.TrimSpace(req.City),
		State:       strings.TrimSpace(req.State),
	}

	existing, err := store.FindGuestByMobile(ctx, tenantID, mobile)
	switch {
	case err == nil:
		g.ID = existing.ID
		if err := store.UpdateGuest(ctx, g); err != nil {
			return 0, err
		}
		return existing.ID, nil
	case errors.Is(err, domain.ErrNotFound):
		return store.InsertGuest(ctx, g)
	default:
		return 0, err
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case domain.IsConflict(err):
		return "conflict"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func availableRoomsKey(tenantID int64) string {
	return fmt.Sprintf("rooms:avail:%d", tenantID)
}

func guestKey(tenantID int64, mobile string) string {
	return fmt.Sprintf("guest:%d:%s", tenantID, mobile)
}
