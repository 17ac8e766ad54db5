package mysql

// -----------------------------------------------------------------------------
// GUESTS
// -----------------------------------------------------------------------------

const findGuestByMobileSQL = `
SELECT
  id, tenant_id, full_name, mobile, email, company_name, gst_number,
  address, identity_card_type, identity_card_number, city, state
FROM guests
WHERE tenant_id = ? AND mobile = ?
LIMIT 1
`

const insertGuestSQL = `
INSERT INTO guests
  (tenant_id, full_name, mobile, email, company_name, gst_number,
   address, identity_card_type, identity_card_number, city, state)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateGuestSQL = `
UPDATE guests SET
  full_name = ?,
  email = ?,
  company_name = ?,
  gst_number = ?,
  address = ?,
  identity_card_type = ?,
  identity_card_number = ?,
  city = ?,
  state = ?,
  updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND tenant_id = ?
`

// -----------------------------------------------------------------------------
// ROOMS
// -----------------------------------------------------------------------------

const listAvailableRoomsSQL = `
SELECT id, tenant_id, room_number, floor_number, category, base_rate, status
FROM rooms
WHERE tenant_id = ? AND status = 'available'
ORDER BY room_number ASC
`

const getRoomSQL = `
SELECT id, tenant_id, room_number, floor_number, category, base_rate, status
FROM rooms
WHERE id = ? AND tenant_id = ?
`

// Conditional transitions: the WHERE clause carries the current-state check,
// and the caller inspects the affected-row count. This is what serializes two
// concurrent check-ins on the same room.
const claimRoomSQL = `
UPDATE rooms SET status = 'occupied'
WHERE id = ? AND tenant_id = ? AND status = 'available'
`

const releaseRoomSQL = `
UPDATE rooms SET status = 'dirty'
WHERE id = ? AND tenant_id = ? AND status = 'occupied'
`

// -----------------------------------------------------------------------------
// STAYS (bookings)
// -----------------------------------------------------------------------------

const insertStaySQL = `
INSERT INTO bookings
  (tenant_id, guest_id, room_id, stay_code, check_in, status,
   total_amount, paid_amount, booking_source)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const activeStaySelect = `
SELECT
  b.id, b.tenant_id, b.guest_id, b.room_id, b.stay_code,
  b.check_in, b.check_out, b.status, b.total_amount, b.paid_amount,
  b.booking_source,
  g.full_name, g.mobile,
  r.room_number, r.category, r.base_rate
FROM bookings b
INNER JOIN guests g ON g.id = b.guest_id
INNER JOIN rooms  r ON r.id = b.room_id
WHERE b.tenant_id = ? AND b.status = 'active'
`

const activeStayByRoomNumberSQL = activeStaySelect + `
  AND r.room_number = ?
ORDER BY b.check_in DESC
LIMIT 1
`

const activeStayByCodeSQL = activeStaySelect + `
  AND b.stay_code = ?
LIMIT 1
`

const activeStayByIDSQL = activeStaySelect + `
  AND b.id = ?
LIMIT 1
`

// Same conditional-update-plus-count-check mechanism as the room claim: a
// concurrent checkout that already completed the stay leaves zero rows here.
const completeStaySQL = `
UPDATE bookings SET
  status = 'completed',
  check_out = ?,
  paid_amount = paid_amount + ?
WHERE id = ? AND tenant_id = ? AND status = 'active'
`

// -----------------------------------------------------------------------------
// LEDGER (transactions; append-only)
// -----------------------------------------------------------------------------

const insertLedgerEntrySQL = `
INSERT INTO transactions
  (tenant_id, booking_id, invoice_number, entry_type, category,
   amount, payment_mode, note)
VALUES (?, ?, ?, 'credit', ?, ?, ?, ?)
`

const ledgerTotalSQL = `
SELECT COALESCE(SUM(amount), 0)
FROM transactions
WHERE tenant_id = ? AND booking_id = ?
`
