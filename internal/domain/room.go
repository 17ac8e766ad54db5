package domain

// RoomStatus is the room inventory state. Legal transitions driven by this
// core are available->occupied (claim) and occupied->dirty (release).
// dirty->available (housekeeping) and available<->maintenance are owned by
// the inventory-management surface, not by check-in/check-out.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomDirty       RoomStatus = "dirty"
	RoomMaintenance RoomStatus = "maintenance"
)

type Room struct {
	ID         int64
	TenantID   int64
	RoomNumber string
	Floor      int
	Category   string
	BaseRate   Money // nightly rate, minor units
	Status     RoomStatus
}
