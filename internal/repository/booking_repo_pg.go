package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Veronika2030/supperspot/internal/domain"
)

// ErrCodeConflict signals that the generated booking code already exists for
// the experience; the caller regenerates the suffix and retries.
var ErrCodeConflict = errors.New("booking code already in use for this experience")

const pgUniqueViolation = "23505"

type BookingRepository interface {
	// CreateConfirmed writes the booking and its check-in tokens in one
	// transaction.
	CreateConfirmed(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	// CancelAndRelease moves the booking to CANCELLED and credits its seats
	// back to the experience in one transaction: a cancelled booking can
	// never exist without its seats returned. The transition only fires when
	// the current status is one of from; otherwise domain.ErrInvalidState.
	// The conditional update serialises racing cancels at the row, so the
	// seats are credited exactly once.
	CancelAndRelease(ctx context.Context, id string, from ...domain.BookingStatus) (*domain.Booking, error)
	// RedeemToken consumes one unused check-in token and reports how many
	// attendees are still expected. On the last token the booking moves to
	// CHECKED_IN. A replayed token yields domain.ErrTokenUsed. Redemptions
	// on the same booking serialise on the booking row.
	RedeemToken(ctx context.Context, bookingID, token string) (int, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, experience_id, subject_id, people, status, booking_code, payment_method, contact_email, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.ExperienceID, &b.SubjectID, &b.People, &b.Status,
		&b.BookingCode, &b.PaymentMethod, &b.ContactEmail, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) CreateConfirmed(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO bookings (id, experience_id, subject_id, people, status, booking_code, payment_method, contact_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		booking.ID, booking.ExperienceID, booking.SubjectID, booking.People,
		booking.Status, booking.BookingCode, booking.PaymentMethod, booking.ContactEmail,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrCodeConflict
		}
		return err
	}

	for _, token := range booking.CheckInTokens {
		if _, err := tx.Exec(ctx,
			`INSERT INTO checkin_tokens (token, booking_id) VALUES ($1, $2)`,
			token.Token, booking.ID,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	booking.CheckInTokens, err = r.loadTokens(ctx, id)
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *PGBookingRepository) loadTokens(ctx context.Context, bookingID string) ([]domain.CheckInToken, error) {
	rows, err := r.db.Query(ctx,
		`SELECT token, booking_id, used_at FROM checkin_tokens WHERE booking_id=$1 ORDER BY token`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []domain.CheckInToken
	for rows.Next() {
		var t domain.CheckInToken
		if err := rows.Scan(&t.Token, &t.BookingID, &t.UsedAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (r *PGBookingRepository) CancelAndRelease(ctx context.Context, id string, from ...domain.BookingStatus) (*domain.Booking, error) {
	allowed := make([]string, 0, len(from))
	for _, s := range from {
		allowed = append(allowed, string(s))
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	booking, err := scanBooking(tx.QueryRow(ctx, `
		UPDATE bookings SET status=$1, updated_at=now()
		WHERE id=$2 AND status = ANY($3)
		RETURNING `+bookingColumns,
		domain.BookingStatusCancelled, id, allowed))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Either the booking is missing or its status lost the race;
			// the caller distinguishes by re-reading.
			return nil, domain.ErrInvalidState
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE experiences
		SET remaining_capacity = LEAST(capacity, remaining_capacity + $2), updated_at = now()
		WHERE id = $1`,
		booking.ExperienceID, booking.People,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *PGBookingRepository) RedeemToken(ctx context.Context, bookingID, token string) (int, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	// Lock the booking row first. Concurrent redemptions mark distinct token
	// rows, so without this lock two transactions redeeming the last two
	// tokens would each count the other's token as unused and neither would
	// flip the booking to CHECKED_IN. It also keeps a cancel that lands
	// mid-redemption from being overtaken.
	var status domain.BookingStatus
	err = tx.QueryRow(ctx, `SELECT status FROM bookings WHERE id=$1 FOR UPDATE`, bookingID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	if status != domain.BookingStatusConfirmed && status != domain.BookingStatusCheckedIn {
		return 0, domain.ErrInvalidState
	}

	cmd, err := tx.Exec(ctx,
		`UPDATE checkin_tokens SET used_at=now() WHERE token=$1 AND booking_id=$2 AND used_at IS NULL`,
		token, bookingID)
	if err != nil {
		return 0, err
	}
	if cmd.RowsAffected() == 0 {
		var used bool
		err := tx.QueryRow(ctx,
			`SELECT used_at IS NOT NULL FROM checkin_tokens WHERE token=$1 AND booking_id=$2`,
			token, bookingID).Scan(&used)
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		if err != nil {
			return 0, err
		}
		return 0, domain.ErrTokenUsed
	}

	var remaining int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM checkin_tokens WHERE booking_id=$1 AND used_at IS NULL`,
		bookingID).Scan(&remaining); err != nil {
		return 0, err
	}

	if remaining == 0 {
		if _, err := tx.Exec(ctx,
			`UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2 AND status=$3`,
			domain.BookingStatusCheckedIn, bookingID, domain.BookingStatusConfirmed,
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return remaining, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
