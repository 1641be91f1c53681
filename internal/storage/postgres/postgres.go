package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"slotBooker/internal/config"
	"slotBooker/internal/models"
	"slotBooker/internal/storage"
)

const (
	uniqueViolation = "23505"

	activeSlotIndex = "bookings_active_slot_key"
	tokenIndex      = "bookings_verification_token_key"
)

//go:embed schema.sql
var schema string

type Storage struct {
	DB *sql.DB
}

func InitDB(ctx context.Context, dbCfg *config.Database) (*Storage, error) {
	const op = "storage.postgres.InitDB"

	db, err := sql.Open("postgres", connString(dbCfg))
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", op, err)
	}

	db.SetMaxOpenConns(dbCfg.MaxOpenConns)
	db.SetMaxIdleConns(dbCfg.MaxIdleConns)
	db.SetConnMaxLifetime(dbCfg.ConnMaxLifetime)

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

// connString renders the settings as a postgres:// URL, which keeps
// credentials containing spaces or quotes intact.
func connString(dbCfg *config.Database) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(dbCfg.User, dbCfg.Password),
		Host:     net.JoinHostPort(dbCfg.Host, strconv.Itoa(dbCfg.Port)),
		Path:     "/" + dbCfg.DBName,
		RawQuery: url.Values{"sslmode": {dbCfg.SSLMode}}.Encode(),
	}

	return u.String()
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

// Migrate creates the bookings table and the unique indexes that enforce
// slot exclusivity and token uniqueness.
func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	return nil
}

const bookingColumns = `id, name, email, scheduled_date, status, is_verified, verification_token, expires_at, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner) (*models.Booking, error) {
	var (
		b      models.Booking
		status string
		token  sql.NullString
		expiry sql.NullTime
	)

	err := row.Scan(
		&b.ID,
		&b.Name,
		&b.Email,
		&b.ScheduledDate,
		&status,
		&b.IsVerified,
		&token,
		&expiry,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Status = models.Status(status)
	if token.Valid {
		b.VerificationToken = &token.String
	}
	if expiry.Valid {
		b.ExpiresAt = &expiry.Time
	}

	return &b, nil
}

// CreateBooking inserts b and writes the generated ID back.
func (s *Storage) CreateBooking(ctx context.Context, b *models.Booking) error {
	query := `
		INSERT INTO bookings (name, email, scheduled_date, status, is_verified, verification_token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := s.DB.QueryRowContext(ctx, query,
		b.Name,
		b.Email,
		b.ScheduledDate,
		string(b.Status),
		b.IsVerified,
		nullString(b.VerificationToken),
		nullTime(b.ExpiresAt),
		b.CreatedAt,
	).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", mapUniqueViolation(err))
	}

	return nil
}

func (s *Storage) Booking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	b, err := scanBooking(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return b, nil
}

// BookingByToken looks up an unverified booking by its verification token.
func (s *Storage) BookingByToken(ctx context.Context, token string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE verification_token = $1 AND is_verified = false`

	b, err := scanBooking(s.DB.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking by token: %w", err)
	}

	return b, nil
}

func (s *Storage) Bookings(ctx context.Context, filter models.Filter) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE ($1::boolean IS NULL OR is_verified = $1)
		  AND ($2::text = '' OR name ILIKE $2::text OR email ILIKE $2::text)
		ORDER BY created_at DESC, id DESC`

	var verified sql.NullBool
	if filter.Verified != nil {
		verified = sql.NullBool{Bool: *filter.Verified, Valid: true}
	}

	rows, err := s.DB.QueryContext(ctx, query, verified, searchPattern(filter.Search))
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}

	return bookings, nil
}

// MarkVerified verifies the unverified booking holding token, provided the
// token is still valid at now. The token and its expiry are cleared.
func (s *Storage) MarkVerified(ctx context.Context, token string, now time.Time) (*models.Booking, error) {
	query := `
		UPDATE bookings
		SET is_verified = true, verification_token = NULL, expires_at = NULL
		WHERE verification_token = $1 AND is_verified = false AND expires_at > $2
		RETURNING ` + bookingColumns

	b, err := scanBooking(s.DB.QueryRowContext(ctx, query, token, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrStaleBooking
		}
		return nil, fmt.Errorf("failed to verify booking: %w", err)
	}

	return b, nil
}

// RenewToken swaps oldToken for newToken on an unverified booking.
func (s *Storage) RenewToken(ctx context.Context, id int64, oldToken, newToken string, expiresAt time.Time) (*models.Booking, error) {
	query := `
		UPDATE bookings
		SET verification_token = $1, expires_at = $2
		WHERE id = $3 AND verification_token = $4 AND is_verified = false
		RETURNING ` + bookingColumns

	b, err := scanBooking(s.DB.QueryRowContext(ctx, query, newToken, expiresAt, id, oldToken))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrStaleBooking
		}
		return nil, fmt.Errorf("failed to renew token: %w", mapUniqueViolation(err))
	}

	return b, nil
}

// DecideBooking moves a pending booking to status. Any other current status
// yields ErrStaleBooking.
func (s *Storage) DecideBooking(ctx context.Context, id int64, status models.Status) (*models.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $1
		WHERE id = $2 AND status = 'pending'
		RETURNING ` + bookingColumns

	b, err := scanBooking(s.DB.QueryRowContext(ctx, query, string(status), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.staleOrMissing(ctx, id)
		}
		return nil, fmt.Errorf("failed to decide booking: %w", mapUniqueViolation(err))
	}

	return b, nil
}

// UpdateDetails writes name, email and slot of an unverified booking.
// A verified booking yields ErrStaleBooking.
func (s *Storage) UpdateDetails(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	query := `
		UPDATE bookings
		SET name = $1, email = $2, scheduled_date = $3
		WHERE id = $4 AND is_verified = false
		RETURNING ` + bookingColumns

	updated, err := scanBooking(s.DB.QueryRowContext(ctx, query, b.Name, b.Email, b.ScheduledDate, b.ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.staleOrMissing(ctx, b.ID)
		}
		return nil, fmt.Errorf("failed to update booking: %w", mapUniqueViolation(err))
	}

	return updated, nil
}

// staleOrMissing tells a conditional write that matched nothing apart from
// one whose row was deleted.
func (s *Storage) staleOrMissing(ctx context.Context, id int64) error {
	var exists bool
	if err := s.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check booking: %w", err)
	}

	if !exists {
		return storage.ErrBookingNotFound
	}

	return storage.ErrStaleBooking
}

func (s *Storage) DeleteBooking(ctx context.Context, id int64) error {
	result, err := s.DB.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	if rowsAffected == 0 {
		return storage.ErrBookingNotFound
	}

	return nil
}

// SlotTaken reports whether a pending or accepted booking other than
// excludeID occupies the slot.
func (s *Storage) SlotTaken(ctx context.Context, date time.Time, excludeID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE scheduled_date = $1
			  AND status IN ('pending', 'accepted')
			  AND id <> $2
		)`

	var taken bool
	if err := s.DB.QueryRowContext(ctx, query, date, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}

	return taken, nil
}

func (s *Storage) TokenExists(ctx context.Context, token string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM bookings WHERE verification_token = $1)`

	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, token).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check token: %w", err)
	}

	return exists, nil
}

// DeleteUnverifiedExpired removes pending, unverified bookings whose token
// expired before the given moment. Decided bookings are never purged.
func (s *Storage) DeleteUnverifiedExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM bookings
		WHERE is_verified = false
		  AND status = 'pending'
		  AND expires_at IS NOT NULL
		  AND expires_at < $1`

	result, err := s.DB.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale bookings: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale bookings: %w", err)
	}

	return rowsAffected, nil
}

func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}

	switch pqErr.Constraint {
	case activeSlotIndex:
		return storage.ErrSlotTaken
	case tokenIndex:
		return storage.ErrTokenTaken
	default:
		return err
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// searchPattern turns a search term into an ILIKE substring pattern in which
// % and _ match themselves. An empty term stays empty.
func searchPattern(search string) string {
	if search == "" {
		return ""
	}

	return "%" + likeEscaper.Replace(search) + "%"
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
