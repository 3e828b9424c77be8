// Package postgres implements event and booking storage over PostgreSQL.
//
// The per-event exclusion scope is a row-level lock: WithEventLock opens a
// transaction, takes SELECT ... FOR UPDATE on the event row and runs the
// callback with the transaction bound to the context, so every read the
// admission decision makes sees one consistent snapshot and concurrent
// mutations of the same event serialize on the row lock. Two different
// events never contend.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ticketBooker/internal/config"
	"ticketBooker/internal/models"
	"ticketBooker/internal/storage"

	_ "github.com/lib/pq"
)

type Storage struct {
	db *sql.DB
}

func InitDB(dbCfg *config.Database) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.User,
		dbCfg.Password,
		dbCfg.DBName,
		dbCfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

type txKey struct{}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Storage) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

// WithEventLock runs fn inside a transaction that holds an exclusive
// row-level lock on the event. Returns storage.ErrEventNotFound when the
// event does not exist; any error from fn rolls the transaction back.
func (s *Storage) WithEventLock(ctx context.Context, eventID int64, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrEventNotFound
		}
		return fmt.Errorf("failed to lock event row: %w", err)
	}

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Storage) CreateEvent(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (name, date, location, total_seats)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := s.q(ctx).QueryRowContext(ctx, query,
		event.Name, event.Date, event.Location, event.TotalSeats,
	).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

func (s *Storage) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	query := `
		SELECT e.id, e.name, e.date, e.location, e.total_seats,
		       COALESCE(SUM(b.seats) FILTER (WHERE b.status = 'ACTIVE'), 0)
		FROM events e
		LEFT JOIN bookings b ON b.event_id = e.id
		WHERE e.id = $1
		GROUP BY e.id`

	var event models.Event
	err := s.q(ctx).QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.Date,
		&event.Location,
		&event.TotalSeats,
		&event.BookedSeats,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return &event, nil
}

func (s *Storage) GetAllEvents(ctx context.Context, sortBy string) ([]models.Event, error) {
	order := "e.date ASC"
	switch sortBy {
	case storage.SortByLocation:
		order = "e.location ASC"
	case storage.SortByAvailability:
		order = "e.total_seats - COALESCE(SUM(b.seats) FILTER (WHERE b.status = 'ACTIVE'), 0) DESC"
	}

	query := fmt.Sprintf(`
		SELECT e.id, e.name, e.date, e.location, e.total_seats,
		       COALESCE(SUM(b.seats) FILTER (WHERE b.status = 'ACTIVE'), 0)
		FROM events e
		LEFT JOIN bookings b ON b.event_id = e.id
		GROUP BY e.id
		ORDER BY %s, e.id ASC`, order)

	rows, err := s.q(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		err = rows.Scan(
			&event.ID,
			&event.Name,
			&event.Date,
			&event.Location,
			&event.TotalSeats,
			&event.BookedSeats,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

func (s *Storage) UpdateEvent(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET name = $2, date = $3, location = $4, total_seats = $5
		WHERE id = $1`

	result, err := s.q(ctx).ExecContext(ctx, query,
		event.ID, event.Name, event.Date, event.Location, event.TotalSeats,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if rowsAffected == 0 {
		return storage.ErrEventNotFound
	}

	return nil
}

func (s *Storage) DeleteEvent(ctx context.Context, id int64) error {
	result, err := s.q(ctx).ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if rowsAffected == 0 {
		return storage.ErrEventNotFound
	}

	return nil
}

func (s *Storage) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (event_id, user_id, seats, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := s.q(ctx).QueryRowContext(ctx, query,
		booking.EventID, booking.UserID, booking.Seats, booking.Status, booking.CreatedAt,
	).Scan(&booking.ID)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

func (s *Storage) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `
		SELECT id, event_id, user_id, seats, status, created_at
		FROM bookings
		WHERE id = $1`

	var booking models.Booking
	err := s.q(ctx).QueryRowContext(ctx, query, id).Scan(
		&booking.ID,
		&booking.EventID,
		&booking.UserID,
		&booking.Seats,
		&booking.Status,
		&booking.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return &booking, nil
}

func (s *Storage) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	result, err := s.q(ctx).ExecContext(ctx,
		`UPDATE bookings SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if rowsAffected == 0 {
		return storage.ErrBookingNotFound
	}

	return nil
}

func (s *Storage) GetEventBookings(ctx context.Context, eventID int64, status models.BookingStatus) ([]models.Booking, error) {
	query := `
		SELECT id, event_id, user_id, seats, status, created_at
		FROM bookings
		WHERE event_id = $1 AND status = $2
		ORDER BY created_at ASC`

	rows, err := s.q(ctx).QueryContext(ctx, query, eventID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to get event bookings: %w", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

func (s *Storage) GetUserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	query := `
		SELECT id, event_id, user_id, seats, status, created_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at ASC`

	rows, err := s.q(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user bookings: %w", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

func (s *Storage) HasActiveBooking(ctx context.Context, eventID int64, userID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE event_id = $1 AND user_id = $2 AND status = 'ACTIVE'
		)`

	var exists bool
	if err := s.q(ctx).QueryRowContext(ctx, query, eventID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active booking: %w", err)
	}

	return exists, nil
}

func (s *Storage) SumActiveSeats(ctx context.Context, eventID int64) (int, error) {
	query := `
		SELECT COALESCE(SUM(seats), 0)
		FROM bookings
		WHERE event_id = $1 AND status = 'ACTIVE'`

	var total int
	if err := s.q(ctx).QueryRowContext(ctx, query, eventID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum active seats: %w", err)
	}

	return total, nil
}

func scanBookings(rows *sql.Rows) ([]models.Booking, error) {
	var bookings []models.Booking
	for rows.Next() {
		var booking models.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.EventID,
			&booking.UserID,
			&booking.Seats,
			&booking.Status,
			&booking.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}

	return bookings, nil
}
