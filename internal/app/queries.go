package app

import (
	"context"
	"time"

	"hotelos/internal/domain"
)

// QueryService serves the front desk's read paths: the room-allocation list
// for a new check-in and the returning-guest lookup. Both are cached and
// invalidated by the orchestrators.
type QueryService struct {
	store    domain.Store
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(store domain.Store, cache domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{store: store, cache: cache, cacheTTL: ttl}
}

func (s *QueryService) AvailableRooms(ctx context.Context, id domain.Identity) ([]domain.Room, error) {
	key := availableRoomsKey(id.TenantID)
	var rooms []domain.Room
	if ok, _ := s.cache.Get(ctx, key, &rooms); ok {
		return rooms, nil
	}
	rooms, err := s.store.ListAvailableRooms(ctx, id.TenantID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, rooms, int(s.cacheTTL.Seconds()))
	return rooms, nil
}

// GuestByMobile is the contact-based dedupe lookup used before a check-in.
func (s *QueryService) GuestByMobile(ctx context.Context, id domain.Identity, rawMobile string) (domain.Guest, error) {
	mobile, err := domain.NormalizeMobile(rawMobile)
	if err != nil {
		return domain.Guest{}, err
	}
	key := guestKey(id.TenantID, mobile)
	var g domain.Guest
	if ok, _ := s.cache.Get(ctx, key, &g); ok {
		return g, nil
	}
	g, err = s.store.FindGuestByMobile(ctx, id.TenantID, mobile)
	if err != nil {
		return domain.Guest{}, err
	}
	_ = s.cache.Set(ctx, key, g, int(s.cacheTTL.Seconds()))
	return g, nil
}
