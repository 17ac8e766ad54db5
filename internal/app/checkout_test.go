package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelos/internal/domain"
)

// seedActiveStay puts a guest, an occupied room and an active stay into the
// store, returning the stay id. checkIn is expressed relative to "now".
func seedActiveStay(store *fakeStore, roomID int64, rate domain.Money, checkedInFor time.Duration, paid domain.Money, now time.Time) int64 {
	store.addRoom(roomID, "201", rate, domain.RoomOccupied)
	store.nextGuestID++
	store.guests[store.nextGuestID] = domain.Guest{
		ID: store.nextGuestID, TenantID: 1, FullName: "Asha Verma", Mobile: "9876543210",
	}
	store.nextStayID++
	store.stays[store.nextStayID] = domain.Stay{
		ID:          store.nextStayID,
		TenantID:    1,
		GuestID:     store.nextGuestID,
		RoomID:      roomID,
		Code:        "BK20240308120000AABBCCDD",
		CheckIn:     now.Add(-checkedInFor),
		Status:      domain.StayActive,
		TotalAmount: rate,
		PaidAmount:  paid,
		Source:      "walk-in",
	}
	if paid > 0 {
		store.ledger = append(store.ledger, domain.LedgerEntry{
			ID: 1, TenantID: 1, StayID: store.nextStayID,
			InvoiceNumber: "INV01", Category: domain.LedgerAdvance,
			Amount: paid, PaymentMode: "cash",
		})
	}
	return store.nextStayID
}

func newCheckOutFixture(t *testing.T) (*CheckOutService, *fakeStore, *fakeTx, *fakeCache, time.Time) {
	t.Helper()
	store := newFakeStore()
	tx := &fakeTx{s: store}
	cache := &fakeCache{}
	svc := NewCheckOutService(store, tx, cache)
	now := time.Date(2024, 3, 10, 11, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, store, tx, cache, now
}

func TestSearchActiveStay_ByRoomNumberAndCode(t *testing.T) {
	svc, store, _, _, now := newCheckOutFixture(t)
	stayID := seedActiveStay(store, 201, 2000, 36*time.Hour, 500, now)

	byRoom, err := svc.SearchActiveStay(context.Background(), testIdentity, StayQuery{RoomNumber: "201"})
	require.NoError(t, err)
	assert.Equal(t, stayID, byRoom.StayID)
	assert.Equal(t, "Asha Verma", byRoom.GuestName)

	byCode, err := svc.SearchActiveStay(context.Background(), testIdentity, StayQuery{StayCode: "BK20240308120000AABBCCDD"})
	require.NoError(t, err)
	assert.Equal(t, stayID, byCode.StayID)

	// 36h elapsed rounds up to 2 nights at 2000: 4000 + 12% tax - 500 paid.
	assert.Equal(t, 2, byCode.Bill.Nights)
	assert.Equal(t, domain.Money(4480), byCode.Bill.GrandTotal)
	assert.Equal(t, domain.Money(3980), byCode.Bill.PendingDue)
}

func TestSearchActiveStay_NotFound(t *testing.T) {
	svc, _, _, _, _ := newCheckOutFixture(t)

	_, err := svc.SearchActiveStay(context.Background(), testIdentity, StayQuery{RoomNumber: "999"})
	require.ErrorIs(t, err, domain.ErrNoActiveStay)

	_, err = svc.SearchActiveStay(context.Background(), testIdentity, StayQuery{})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestCheckOut_SettlesAndReleasesRoom(t *testing.T) {
	svc, store, _, cache, now := newCheckOutFixture(t)
	stayID := seedActiveStay(store, 201, 2000, 36*time.Hour, 500, now)

	res, err := svc.CheckOut(context.Background(), testIdentity, CheckOutRequest{StayID: stayID, PaymentMode: "card"})
	require.NoError(t, err)

	assert.Equal(t, domain.Money(3980), res.FinalPayable)
	assert.Equal(t, domain.Money(0), res.Discount)
	assert.Equal(t, domain.RoomDirty, res.NewRoomStatus)

	stay := store.stays[stayID]
	assert.Equal(t, domain.StayCompleted, stay.Status)
	require.NotNil(t, stay.CheckOut)
	assert.Equal(t, now, *stay.CheckOut)
	assert.Equal(t, domain.Money(4480), stay.PaidAmount, "paid must equal the grand total")
	assert.Equal(t, domain.RoomDirty, store.rooms[201].Status)

	require.Len(t, store.ledger, 2)
	final := store.ledger[1]
	assert.Equal(t, domain.LedgerFinalSettlement, final.Category)
	assert.Equal(t, domain.Money(3980), final.Amount)
	assert.Equal(t, "card", final.PaymentMode)

	assert.Contains(t, cache.deleted, "rooms:avail:1")
	assert.Contains(t, cache.deleted, "guest:1:9876543210")
}

func TestCheckOut_HighTierTax(t *testing.T) {
	svc, store, _, _, now := newCheckOutFixture(t)
	stayID := seedActiveStay(store, 201, 8000, 12*time.Hour, 0, now)

	res, err := svc.CheckOut(context.Background(), testIdentity, CheckOutRequest{StayID: stayID})
	require.NoError(t, err)
	assert.Equal(t, 18, res.Bill.TaxRate)
	assert.Equal(t, domain.Money(1440), res.Bill.TaxAmount)
	assert.Equal(t, domain.Money(9440), res.FinalPayable)
}

func TestCheckOut_SecondCallFindsNoActiveStay(t *testing.T) {
	svc, store, _, _, now := newCheckOutFixture(t)
	stayID := seedActiveStay(store, 201, 2000, 36*time.Hour, 500, now)

	_, err := svc.CheckOut(context.Background(), testIdentity, CheckOutRequest{StayID: stayID})
	require.NoError(t, err)

	_, err = svc.CheckOut(context.Background(), testIdentity, CheckOutRequest{StayID: stayID})
	require.ErrorIs(t, err, domain.ErrNoActiveStay)
	assert.Len(t, store.ledger, 2, "no extra settlement entry on the second attempt")
}

func TestCheckOut_DiscountClampsToPendingDue(t *testing.T) {
	svc, store, _, _, now := newCheckOutFixture(t)
	stayID := seedActiveStay(store, 201, 2000, 12*time.Hour, 500, now)
	// 1 night: 2000 + 240 tax = 2240, pending 1740.

	res, err := svc.CheckOut(context.Background(), testIdentity, CheckOutRequest{StayID: stayID, Discount: 99999})
	require.NoError(t, err)

	assert.Equal(t, domain.Money(1740), res.Discount)
	assert.Equal(t, domain.Money(0), res.FinalPayable)
	assert.Len(t, store.ledger, 1, "zero settlement writes no ledger entry")
	assert.Equal(t, domain.StayCompleted, store.stays[stayID].Status)
	assert.Equal(t, domain.RoomDirty, store.rooms[201].Status)
}

func TestCheckOut_OverpaymentCarriesCredit(t *testing.T) {
	svc, store, _, _, now := newCheckOutFixture(t)
	stayID := seedActiveStay(store, 201, 2000, 12*time.Hour, 3000, now)
	// Grand total 2240, paid 3000: 760 credit, nothing more to collect.

	res, err := svc.CheckOut(context.Background(), testIdentity, CheckOutRequest{StayID: stayID})
	require.NoError(t, err)

	assert.Equal(t, domain.Money(0), res.FinalPayable)
	assert.Equal(t, domain.Money(760), res.CreditCarried)
	assert.Len(t, store.ledger, 1, "credit never becomes a negative ledger entry")
	assert.Equal(t, domain.StayCompleted, store.stays[stayID].Status)
}

func TestCheckOut_LedgerMismatchRollsBack(t *testing.T) {
	svc, store, tx, cache, now := newCheckOutFixture(t)
	stayID := seedActiveStay(store, 201, 2000, 36*time.Hour, 500, now)
	store.ledgerSkew = 1

	_, err := svc.CheckOut(context.Background(), testIdentity, CheckOutRequest{StayID: stayID})
	require.ErrorIs(t, err, domain.ErrLedgerMismatch)

	assert.Equal(t, 1, tx.rolledBack)
	assert.Equal(t, domain.StayActive, store.stays[stayID].Status, "stay must remain open")
	assert.Equal(t, domain.RoomOccupied, store.rooms[201].Status, "room must remain occupied")
	assert.Len(t, store.ledger, 1)
	assert.Empty(t, cache.deleted)
}

func TestCheckOut_ValidatesRequest(t *testing.T) {
	svc, _, tx, _, _ := newCheckOutFixture(t)

	_, err := svc.CheckOut(context.Background(), testIdentity, CheckOutRequest{StayID: 0})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CheckOut(context.Background(), testIdentity, CheckOutRequest{StayID: 1, Discount: -5})
	require.ErrorIs(t, err, domain.ErrValidation)

	assert.Zero(t, tx.began)
}
