package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hotelos/internal/domain"
)

// ---- in-memory store fake ----

type fakeStore struct {
	guests      map[int64]domain.Guest
	rooms       map[int64]domain.Room
	stays       map[int64]domain.Stay
	ledger      []domain.LedgerEntry
	nextGuestID int64
	nextStayID  int64

	// failure injection
	dupCodeRemaining int          // force ErrDuplicateStayCode on the next N stay inserts
	ledgerSkew       domain.Money // added to LedgerTotal to simulate drift
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		guests: map[int64]domain.Guest{},
		rooms:  map[int64]domain.Room{},
		stays:  map[int64]domain.Stay{},
	}
}

func (f *fakeStore) addRoom(id int64, number string, rate domain.Money, status domain.RoomStatus) {
	f.rooms[id] = domain.Room{ID: id, TenantID: 1, RoomNumber: number, Category: "standard", BaseRate: rate, Status: status}
}

func (f *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	for k, v := range f.guests {
		c.guests[k] = v
	}
	for k, v := range f.rooms {
		c.rooms[k] = v
	}
	for k, v := range f.stays {
		c.stays[k] = v
	}
	c.ledger = append([]domain.LedgerEntry(nil), f.ledger...)
	c.nextGuestID, c.nextStayID = f.nextGuestID, f.nextStayID
	c.dupCodeRemaining, c.ledgerSkew = f.dupCodeRemaining, f.ledgerSkew
	return c
}

func (f *fakeStore) FindGuestByMobile(_ context.Context, tenantID int64, mobile string) (domain.Guest, error) {
	for _, g := range f.guests {
		if g.TenantID == tenantID && g.Mobile == mobile {
			return g, nil
		}
	}
	return domain.Guest{}, domain.ErrNotFound
}

func (f *fakeStore) InsertGuest(_ context.Context, g domain.Guest) (int64, error) {
	f.nextGuestID++
	g.ID = f.nextGuestID
	f.guests[g.ID] = g
	return g.ID, nil
}

func (f *fakeStore) UpdateGuest(_ context.Context, g domain.Guest) error {
	if _, ok := f.guests[g.ID]; !ok {
		return domain.ErrNotFound
	}
	f.guests[g.ID] = g
	return nil
}

func (f *fakeStore) ListAvailableRooms(_ context.Context, tenantID int64) ([]domain.Room, error) {
	var out []domain.Room
	for _, r := range f.rooms {
		if r.TenantID == tenantID && r.Status == domain.RoomAvailable {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) GetRoom(_ context.Context, tenantID, roomID int64) (domain.Room, error) {
	r, ok := f.rooms[roomID]
	if !ok || r.TenantID != tenantID {
		return domain.Room{}, domain.ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) ClaimRoom(_ context.Context, tenantID, roomID int64) error {
	r, ok := f.rooms[roomID]
	if !ok || r.TenantID != tenantID || r.Status != domain.RoomAvailable {
		return domain.ErrRoomUnavailable
	}
	r.Status = domain.RoomOccupied
	f.rooms[roomID] = r
	return nil
}

func (f *fakeStore) ReleaseRoom(_ context.Context, tenantID, roomID int64) error {
	r, ok := f.rooms[roomID]
	if !ok || r.TenantID != tenantID || r.Status != domain.RoomOccupied {
		return domain.ErrInvalidTransition
	}
	r.Status = domain.RoomDirty
	f.rooms[roomID] = r
	return nil
}

func (f *fakeStore) InsertStay(_ context.Context, s domain.Stay) (int64, error) {
	if f.dupCodeRemaining > 0 {
		f.dupCodeRemaining--
		return 0, fmt.Errorf("stay code %s: %w", s.Code, domain.ErrDuplicateStayCode)
	}
	for _, ex := range f.stays {
		if ex.TenantID == s.TenantID && ex.Code == s.Code {
			return 0, domain.ErrDuplicateStayCode
		}
	}
	f.nextStayID++
	s.ID = f.nextStayID
	f.stays[s.ID] = s
	return s.ID, nil
}

func (f *fakeStore) activeStay(s domain.Stay) domain.ActiveStay {
	g := f.guests[s.GuestID]
	r := f.rooms[s.RoomID]
	return domain.ActiveStay{
		Stay:         s,
		GuestName:    g.FullName,
		GuestMobile:  g.Mobile,
		RoomNumber:   r.RoomNumber,
		RoomCategory: r.Category,
		RoomBaseRate: r.BaseRate,
	}
}

func (f *fakeStore) ActiveStayByRoomNumber(_ context.Context, tenantID int64, roomNumber string) (domain.ActiveStay, error) {
	for _, s := range f.stays {
		if s.TenantID == tenantID && s.Status == domain.StayActive && f.rooms[s.RoomID].RoomNumber == roomNumber {
			return f.activeStay(s), nil
		}
	}
	return domain.ActiveStay{}, domain.ErrNotFound
}

func (f *fakeStore) ActiveStayByCode(_ context.Context, tenantID int64, code string) (domain.ActiveStay, error) {
	for _, s := range f.stays {
		if s.TenantID == tenantID && s.Status == domain.StayActive && s.Code == code {
			return f.activeStay(s), nil
		}
	}
	return domain.ActiveStay{}, domain.ErrNotFound
}

func (f *fakeStore) ActiveStayByID(_ context.Context, tenantID, stayID int64) (domain.ActiveStay, error) {
	s, ok := f.stays[stayID]
	if !ok || s.TenantID != tenantID || s.Status != domain.StayActive {
		return domain.ActiveStay{}, domain.ErrNotFound
	}
	return f.activeStay(s), nil
}

func (f *fakeStore) CompleteStay(_ context.Context, tenantID, stayID int64, settled domain.Money, checkOut time.Time) error {
	s, ok := f.stays[stayID]
	if !ok || s.TenantID != tenantID || s.Status != domain.StayActive {
		return domain.ErrNoActiveStay
	}
	s.Status = domain.StayCompleted
	s.CheckOut = &checkOut
	s.PaidAmount += settled
	f.stays[stayID] = s
	return nil
}

func (f *fakeStore) InsertLedgerEntry(_ context.Context, e domain.LedgerEntry) (int64, error) {
	e.ID = int64(len(f.ledger) + 1)
	f.ledger = append(f.ledger, e)
	return e.ID, nil
}

func (f *fakeStore) LedgerTotal(_ context.Context, tenantID, stayID int64) (domain.Money, error) {
	var total domain.Money
	for _, e := range f.ledger {
		if e.TenantID == tenantID && e.StayID == stayID {
			total += e.Amount
		}
	}
	return total + f.ledgerSkew, nil
}

// ---- transaction runner fake ----

// fakeTx snapshots the store before fn and restores it on error, mimicking a
// full rollback.
type fakeTx struct {
	s          *fakeStore
	began      int
	rolledBack int
}

func (t *fakeTx) WithTx(_ context.Context, fn func(domain.Store) error) error {
	t.began++
	snap := t.s.clone()
	if err := fn(t.s); err != nil {
		*t.s = *snap
		t.rolledBack++
		return err
	}
	return nil
}

// ---- cache fake ----

type fakeCache struct {
	store   map[string][]byte
	deleted []string
	sets    int
}

func (c *fakeCache) Get(_ context.Context, key string, dst any) (bool, error) {
	raw, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *fakeCache) Set(_ context.Context, key string, v any, _ int) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	c.store[key] = raw
	c.sets++
	return nil
}

func (c *fakeCache) Del(_ context.Context, key string) error {
	c.deleted = append(c.deleted, key)
	delete(c.store, key)
	return nil
}
