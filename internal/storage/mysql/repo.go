package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotelos/internal/domain"
)

// querier is satisfied by both *sql.DB and *sql.Tx, so the same repo code
// serves standalone reads and transactional orchestrator writes.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Repo struct {
	db        *sql.DB
	q         querier
	txTimeout time.Duration
}

var (
	_ domain.Store    = (*Repo)(nil)
	_ domain.TxRunner = (*Repo)(nil)
)

const defaultTxTimeout = 10 * time.Second

func New(db *sql.DB, txTimeout time.Duration) *Repo {
	if txTimeout <= 0 {
		txTimeout = defaultTxTimeout
	}
	return &Repo{db: db, q: db, txTimeout: txTimeout}
}

// WithTx runs fn against a transaction-scoped view of the repo under a
// bounded timeout. fn returning an error, or the caller's context ending,
// rolls the whole transaction back; there is no partial commit.
func (r *Repo) WithTx(ctx context.Context, fn func(domain.Store) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.txTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&Repo{db: r.db, q: tx, txTimeout: r.txTimeout}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Warn().Err(rbErr).Msg("tx rollback failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// ---- Guest directory ----

func (r *Repo) FindGuestByMobile(ctx context.Context, tenantID int64, mobile string) (domain.Guest, error) {
	var g domain.Guest
	err := r.q.QueryRowContext(ctx, findGuestByMobileSQL, tenantID, mobile).Scan(
		&g.ID, &g.TenantID, &g.FullName, &g.Mobile, &g.Email, &g.CompanyName,
		&g.GSTNumber, &g.Address, &g.IDType, &g.IDNumber, &g.City, &g.State,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Guest{}, domain.ErrNotFound
		}
		return domain.Guest{}, fmt.Errorf("find guest: %w", err)
	}
	return g, nil
}

func (r *Repo) InsertGuest(ctx context.Context, g domain.Guest) (int64, error) {
	res, err := r.q.ExecContext(ctx, insertGuestSQL,
		g.TenantID, g.FullName, g.Mobile, g.Email, g.CompanyName, g.GSTNumber,
		g.Address, g.IDType, g.IDNumber, g.City, g.State,
	)
	if err != nil {
		return 0, fmt.Errorf("insert guest: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert guest id: %w", err)
	}
	return id, nil
}

func (r *Repo) UpdateGuest(ctx context.Context, g domain.Guest) error {
	_, err := r.q.ExecContext(ctx, updateGuestSQL,
		g.FullName, g.Email, g.CompanyName, g.GSTNumber, g.Address,
		g.IDType, g.IDNumber, g.City, g.State,
		g.ID, g.TenantID,
	)
	if err != nil {
		return fmt.Errorf("update guest %d: %w", g.ID, err)
	}
	return nil
}

// ---- Room inventory ----

func (r *Repo) ListAvailableRooms(ctx context.Context, tenantID int64) ([]domain.Room, error) {
	rows, err := r.q.QueryContext(ctx, listAvailableRoomsSQL, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list available rooms: %w", err)
	}
	defer rows.Close()

	var out []domain.Room
	for rows.Next() {
		var rm domain.Room
		if err := rows.Scan(&rm.ID, &rm.TenantID, &rm.RoomNumber, &rm.Floor, &rm.Category, &rm.BaseRate, &rm.Status); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

func (r *Repo) GetRoom(ctx context.Context, tenantID, roomID int64) (domain.Room, error) {
	var rm domain.Room
	err := r.q.QueryRowContext(ctx, getRoomSQL, roomID, tenantID).Scan(
		&rm.ID, &rm.TenantID, &rm.RoomNumber, &rm.Floor, &rm.Category, &rm.BaseRate, &rm.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Room{}, domain.ErrNotFound
		}
		return domain.Room{}, fmt.Errorf("get room %d: %w", roomID, err)
	}
	return rm, nil
}

// ClaimRoom is the single contention point of the whole engine. The UPDATE
// only matches rows still in available state; whichever concurrent check-in
// commits the row first wins, and every other caller observes zero affected
// rows.
func (r *Repo) ClaimRoom(ctx context.Context, tenantID, roomID int64) error {
	res, err := r.q.ExecContext(ctx, claimRoomSQL, roomID, tenantID)
	if err != nil {
		return fmt.Errorf("claim room %d: %w", roomID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("claim room %d: %w", roomID, err)
	}
	if n == 0 {
		return fmt.Errorf("room %d: %w", roomID, domain.ErrRoomUnavailable)
	}
	return nil
}

func (r *Repo) ReleaseRoom(ctx context.Context, tenantID, roomID int64) error {
	res, err := r.q.ExecContext(ctx, releaseRoomSQL, roomID, tenantID)
	if err != nil {
		return fmt.Errorf("release room %d: %w", roomID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("release room %d: %w", roomID, err)
	}
	if n == 0 {
		return fmt.Errorf("room %d not occupied: %w", roomID, domain.ErrInvalidTransition)
	}
	return nil
}

// ---- Stays ----

func (r *Repo) InsertStay(ctx context.Context, s domain.Stay) (int64, error) {
	res, err := r.q.ExecContext(ctx, insertStaySQL,
		s.TenantID, s.GuestID, s.RoomID, s.Code, s.CheckIn.UTC(), string(s.Status),
		int64(s.TotalAmount), int64(s.PaidAmount), s.Source,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, fmt.Errorf("stay code %s: %w", s.Code, domain.ErrDuplicateStayCode)
		}
		return 0, fmt.Errorf("insert stay: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert stay id: %w", err)
	}
	return id, nil
}

func (r *Repo) ActiveStayByRoomNumber(ctx context.Context, tenantID int64, roomNumber string) (domain.ActiveStay, error) {
	return r.scanActiveStay(r.q.QueryRowContext(ctx, activeStayByRoomNumberSQL, tenantID, roomNumber))
}

func (r *Repo) ActiveStayByCode(ctx context.Context, tenantID int64, code string) (domain.ActiveStay, error) {
	return r.scanActiveStay(r.q.QueryRowContext(ctx, activeStayByCodeSQL, tenantID, code))
}

func (r *Repo) ActiveStayByID(ctx context.Context, tenantID, stayID int64) (domain.ActiveStay, error) {
	return r.scanActiveStay(r.q.QueryRowContext(ctx, activeStayByIDSQL, tenantID, stayID))
}

func (r *Repo) scanActiveStay(row *sql.Row) (domain.ActiveStay, error) {
	var (
		as       domain.ActiveStay
		checkOut sql.NullTime
		status   string
	)
	err := row.Scan(
		&as.ID, &as.TenantID, &as.GuestID, &as.RoomID, &as.Code,
		&as.CheckIn, &checkOut, &status, &as.TotalAmount, &as.PaidAmount,
		&as.Source,
		&as.GuestName, &as.GuestMobile,
		&as.RoomNumber, &as.RoomCategory, &as.RoomBaseRate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ActiveStay{}, domain.ErrNotFound
		}
		return domain.ActiveStay{}, fmt.Errorf("scan active stay: %w", err)
	}
	as.Status = domain.StayStatus(status)
	if checkOut.Valid {
		t := checkOut.Time
		as.CheckOut = &t
	}
	return as, nil
}

func (r *Repo) CompleteStay(ctx context.Context, tenantID, stayID int64, settled domain.Money, checkOut time.Time) error {
	res, err := r.q.ExecContext(ctx, completeStaySQL, checkOut.UTC(), int64(settled), stayID, tenantID)
	if err != nil {
		return fmt.Errorf("complete stay %d: %w", stayID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete stay %d: %w", stayID, err)
	}
	if n == 0 {
		return fmt.Errorf("stay %d: %w", stayID, domain.ErrNoActiveStay)
	}
	return nil
}

// ---- Ledger ----

func (r *Repo) InsertLedgerEntry(ctx context.Context, e domain.LedgerEntry) (int64, error) {
	res, err := r.q.ExecContext(ctx, insertLedgerEntrySQL,
		e.TenantID, e.StayID, e.InvoiceNumber, string(e.Category),
		int64(e.Amount), e.PaymentMode, e.Note,
	)
	if err != nil {
		return 0, fmt.Errorf("insert ledger entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert ledger entry id: %w", err)
	}
	return id, nil
}

func (r *Repo) LedgerTotal(ctx context.Context, tenantID, stayID int64) (domain.Money, error) {
	var total int64
	err := r.q.QueryRowContext(ctx, ledgerTotalSQL, tenantID, stayID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("ledger total for stay %d: %w", stayID, err)
	}
	return domain.Money(total), nil
}
