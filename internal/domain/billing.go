package domain

import "time"

// Money is an amount in currency minor units. All monetary arithmetic is
// integer arithmetic; binary floating point is never used for money.
type Money int64

// Tax is a step function over the room charge: the threshold value itself
// takes the lower rate.
const (
	TaxThreshold Money = 7500
	TaxRateLow         = 12 // percent
	TaxRateHigh        = 18 // percent
)

// Quote prices a stay at check-in: baseRate x nights, minimum one night.
func Quote(baseRate Money, nights int) Money {
	if nights < 1 {
		nights = 1
	}
	return baseRate * Money(nights)
}

// TaxTier returns the applicable tax rate in percent for a room charge.
func TaxTier(roomCharge Money) int {
	if roomCharge <= TaxThreshold {
		return TaxRateLow
	}
	return TaxRateHigh
}

// TaxAmount computes the tax on a room charge in minor units, truncating
// any sub-unit remainder.
func TaxAmount(roomCharge Money) Money {
	return roomCharge * Money(TaxTier(roomCharge)) / 100
}

// ElapsedNights is ceil((now - checkIn) / 24h) with a floor of one: a
// same-day checkout is still charged one night.
func ElapsedNights(checkIn, now time.Time) int {
	d := now.Sub(checkIn)
	if d <= 0 {
		return 1
	}
	n := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		n++
	}
	if n < 1 {
		n = 1
	}
	return n
}

func GrandTotal(roomCharge, tax, extras Money) Money {
	return roomCharge + tax + extras
}

// PendingDue may be negative, which means the guest has overpaid and holds a
// credit; the orchestrator decides what to do with it.
func PendingDue(grandTotal, alreadyPaid Money) Money {
	return grandTotal - alreadyPaid
}

// ClampDiscount bounds a requested discount to [0, pendingDue]. A negative
// pending due (overpayment) leaves no room for further discount.
func ClampDiscount(discount, pendingDue Money) Money {
	if discount < 0 {
		return 0
	}
	if pendingDue < 0 {
		return 0
	}
	if discount > pendingDue {
		return pendingDue
	}
	return discount
}

// Bill is the full settlement breakdown for a stay, recomputed fresh from
// the room rate and elapsed wall-clock time. It is advisory until the
// checkout transaction commits.
type Bill struct {
	Nights      int
	BaseRate    Money
	RoomCharge  Money
	TaxRate     int // percent
	TaxAmount   Money
	Extras      Money
	GrandTotal  Money
	AlreadyPaid Money
	PendingDue  Money
}

// ComputeBill derives the whole breakdown for a stay checked in at checkIn,
// priced at baseRate, as of now.
func ComputeBill(baseRate Money, checkIn, now time.Time, alreadyPaid Money) Bill {
	nights := ElapsedNights(checkIn, now)
	charge := Quote(baseRate, nights)
	tax := TaxAmount(charge)
	total := GrandTotal(charge, tax, 0)
	return Bill{
		Nights:      nights,
		BaseRate:    baseRate,
		RoomCharge:  charge,
		TaxRate:     TaxTier(charge),
		TaxAmount:   tax,
		Extras:      0,
		GrandTotal:  total,
		AlreadyPaid: alreadyPaid,
		PendingDue:  PendingDue(total, alreadyPaid),
	}
}
