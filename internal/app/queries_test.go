package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelos/internal/domain"
)

func TestAvailableRooms_CachesResult(t *testing.T) {
	store := newFakeStore()
	store.addRoom(101, "101", 2000, domain.RoomAvailable)
	store.addRoom(102, "102", 3500, domain.RoomOccupied)
	cache := &fakeCache{}
	svc := NewQueryService(store, cache, time.Minute)

	rooms, err := svc.AvailableRooms(context.Background(), testIdentity)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "101", rooms[0].RoomNumber)
	assert.Equal(t, 1, cache.sets)

	// Second call is served from cache even after the store changes.
	store.rooms[101] = domain.Room{}
	rooms, err = svc.AvailableRooms(context.Background(), testIdentity)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, 1, cache.sets)
}

func TestGuestByMobile_NormalizesBeforeLookup(t *testing.T) {
	store := newFakeStore()
	id, err := store.InsertGuest(context.Background(), domain.Guest{
		TenantID: 1, FullName: "Asha Verma", Mobile: "9876543210",
	})
	require.NoError(t, err)
	svc := NewQueryService(store, &fakeCache{}, time.Minute)

	// Country prefix digits survive normalization, so this raw form misses.
	_, err = svc.GuestByMobile(context.Background(), testIdentity, "+91 98765 43210")
	require.ErrorIs(t, err, domain.ErrNotFound)

	g, err := svc.GuestByMobile(context.Background(), testIdentity, "98765-43210")
	require.NoError(t, err)
	assert.Equal(t, id, g.ID)

	_, err = svc.GuestByMobile(context.Background(), testIdentity, "12345")
	require.ErrorIs(t, err, domain.ErrValidation)
}
