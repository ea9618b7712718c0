package repository

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/room-booking/internal/model"
)

// ledgerLockKey is the pg_advisory_lock key shared by every process that
// writes the bookings table.
const ledgerLockKey int64 = 0x524f4f4d424b // "ROOMBK"

// PgBookingStore persists bookings in PostgreSQL.
type PgBookingStore struct {
	db *pgxpool.Pool
}

// NewPgBookingStore constructs a PgBookingStore.
func NewPgBookingStore(db *pgxpool.Pool) *PgBookingStore {
	return &PgBookingStore{db: db}
}

// Load returns every booking in commit order.
func (s *PgBookingStore) Load(ctx context.Context) ([]model.Booking, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, room_id, date, start_at, end_at, name, phone, notes, price, created_at
		 FROM bookings
		 ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	bookings := []model.Booking{}
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.RoomID, &b.Date, &b.Start, &b.End,
			&b.Name, &b.Phone, &b.Notes, &b.Price, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// Commit makes the table equal to bookings inside one transaction. Rows not
// in bookings are removed and new rows are inserted; existing rows are never
// rewritten because bookings are immutable once committed.
func (s *PgBookingStore) Commit(ctx context.Context, bookings []model.Booking) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	ids := make([]string, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}
	if _, err = tx.Exec(ctx, `DELETE FROM bookings WHERE NOT (id = ANY($1))`, ids); err != nil {
		return fmt.Errorf("prune bookings: %w", err)
	}

	batch := &pgx.Batch{}
	for _, b := range bookings {
		batch.Queue(
			`INSERT INTO bookings (id, room_id, date, start_at, end_at, name, phone, notes, price, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 ON CONFLICT (id) DO NOTHING`,
			b.ID, b.RoomID, b.Date, b.Start, b.End, b.Name, b.Phone, b.Notes, b.Price, b.CreatedAt,
		)
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert bookings: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Append inserts one booking. The ledger's lock makes it the only writer,
// so the id is never already present.
func (s *PgBookingStore) Append(ctx context.Context, b model.Booking) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO bookings (id, room_id, date, start_at, end_at, name, phone, notes, price, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		b.ID, b.RoomID, b.Date, b.Start, b.End, b.Name, b.Phone, b.Notes, b.Price, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// Lock takes a session-level advisory lock on a dedicated connection so that
// ledgers in other processes sharing the database serialize with this one.
//
// SELECT … FOR UPDATE cannot serve here: the conflict check is against rows
// that may not exist yet, so there is no row to lock.
func (s *PgBookingStore) Lock(ctx context.Context) (func(), error) {
	conn, err := s.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire lock connection: %w", err)
	}
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, ledgerLockKey); err != nil {
		conn.Release()
		return nil, fmt.Errorf("advisory lock: %w", err)
	}
	return func() {
		if _, err := conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, ledgerLockKey); err != nil {
			// The lock is bound to the session; drop the connection rather
			// than return a locked session to the pool.
			log.Printf("advisory unlock failed, closing connection: %v", err)
			_ = conn.Hijack().Close(context.Background())
			return
		}
		conn.Release()
	}, nil
}

// PgBlackoutStore persists blackout flags in PostgreSQL, one row per
// (date, room).
type PgBlackoutStore struct {
	db *pgxpool.Pool
}

// NewPgBlackoutStore constructs a PgBlackoutStore.
func NewPgBlackoutStore(db *pgxpool.Pool) *PgBlackoutStore {
	return &PgBlackoutStore{db: db}
}

// Load returns every recorded flag.
func (s *PgBlackoutStore) Load(ctx context.Context) (model.BlackoutMap, error) {
	rows, err := s.db.Query(ctx, `SELECT date, room_id, closed FROM blackouts`)
	if err != nil {
		return nil, fmt.Errorf("list blackouts: %w", err)
	}
	defer rows.Close()

	m := model.BlackoutMap{}
	for rows.Next() {
		var (
			date   string
			roomID int
			closed bool
		)
		if err := rows.Scan(&date, &roomID, &closed); err != nil {
			return nil, fmt.Errorf("scan blackout: %w", err)
		}
		if m[date] == nil {
			m[date] = map[int]bool{}
		}
		m[date][roomID] = closed
	}
	return m, rows.Err()
}

// ForDate returns the flags recorded for date.
func (s *PgBlackoutStore) ForDate(ctx context.Context, date string) (map[int]bool, error) {
	rows, err := s.db.Query(ctx, `SELECT room_id, closed FROM blackouts WHERE date = $1`, date)
	if err != nil {
		return nil, fmt.Errorf("list blackouts for %s: %w", date, err)
	}
	defer rows.Close()

	day := map[int]bool{}
	for rows.Next() {
		var (
			roomID int
			closed bool
		)
		if err := rows.Scan(&roomID, &closed); err != nil {
			return nil, fmt.Errorf("scan blackout: %w", err)
		}
		day[roomID] = closed
	}
	return day, rows.Err()
}

// Upsert writes one flag. The primary key on (date, room_id) makes
// concurrent upserts for different rooms independent.
func (s *PgBlackoutStore) Upsert(ctx context.Context, date string, roomID int, closed bool) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO blackouts (date, room_id, closed)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (date, room_id) DO UPDATE SET closed = EXCLUDED.closed`,
		date, roomID, closed,
	)
	if err != nil {
		return fmt.Errorf("upsert blackout: %w", err)
	}
	return nil
}
