package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gymhub/internal/db"
	"gymhub/internal/slot"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrBookingNotFound  = errors.New("booking not found")
	ErrAlreadyCancelled = errors.New("booking already cancelled")
	ErrNotPending       = errors.New("booking is not pending")
	ErrDuplicateBooking = errors.New("idempotency key already used")
)

const bookingColumns = `id, user_id, gym_id, slot_id, plan, start_date, end_date, amount, currency, status,
	payment_intent_id, idempotency_key, slot_consumed, cancelled_at, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *Booking) (*Booking, error) {
	query := `
		INSERT INTO bookings (user_id, gym_id, slot_id, plan, start_date, end_date, amount, currency,
			status, payment_intent_id, idempotency_key, slot_consumed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + bookingColumns

	var out Booking
	err := r.db.GetContext(ctx, &out, query,
		b.UserID, b.GymID, b.SlotID, b.Plan,
		b.StartDate.Format(dateLayout), b.EndDate.Format(dateLayout),
		b.Amount, b.Currency, b.Status, b.PaymentIntentID, b.IdempotencyKey, b.SlotConsumed,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicateBooking
		}
		return nil, err
	}
	return &out, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Booking, error) {
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

func (r *repository) GetByIdempotencyKey(ctx context.Context, key string) (*Booking, error) {
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE idempotency_key = $1`, key)
}

func (r *repository) getOne(ctx context.Context, query string, arg interface{}) (*Booking, error) {
	var b Booking
	err := db.RetryRead(ctx, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &b, query, arg)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
}

func (r *repository) ListByGym(ctx context.Context, gymID int) ([]Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE gym_id = $1 ORDER BY start_date, id`, gymID)
}

func (r *repository) list(ctx context.Context, query string, arg interface{}) ([]Booking, error) {
	bookings := []Booking{}
	err := db.RetryRead(ctx, func(ctx context.Context) error {
		bookings = bookings[:0]
		return r.db.SelectContext(ctx, &bookings, query, arg)
	})
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) Confirm(ctx context.Context, id, slotID int) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE bookings
			SET status = 'confirmed', slot_consumed = TRUE, updated_at = NOW()
			WHERE id = $1 AND status = 'pending'`, id)
		if err != nil {
			return err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotPending
		}

		return slot.Reserve(ctx, tx, slotID)
	})
}

func (r *repository) Cancel(ctx context.Context, id int) (*Booking, error) {
	var b Booking
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &b, `
			UPDATE bookings
			SET status = 'cancelled', cancelled_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND status <> 'cancelled'
			RETURNING `+bookingColumns, id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAlreadyCancelled
		}
		if err != nil {
			return err
		}

		if !b.SlotConsumed {
			return nil
		}
		return slot.Release(ctx, tx, b.SlotID)
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) StatsByDay(ctx context.Context, from, to time.Time) ([]StatsByDay, error) {
	query := `
		SELECT
		  TO_CHAR(DATE(created_at), 'YYYY-MM-DD')       AS bucket,
		  COUNT(*)                                      AS bookings_created,
		  COUNT(*) FILTER (WHERE status = 'confirmed')  AS bookings_confirmed,
		  COUNT(*) FILTER (WHERE status = 'cancelled')  AS bookings_cancelled
		FROM bookings
		WHERE created_at BETWEEN $1 AND $2
		GROUP BY DATE(created_at)
		ORDER BY DATE(created_at)`

	stats := []StatsByDay{}
	if err := r.db.SelectContext(ctx, &stats, query, from, to); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *repository) StatsByGym(ctx context.Context, from, to time.Time) ([]StatsByGym, error) {
	query := `
		SELECT
		  g.id                                                            AS gym_id,
		  g.name                                                          AS gym_name,
		  g.currency                                                      AS currency,
		  COUNT(b.id)                                                     AS bookings_created,
		  COUNT(b.id) FILTER (WHERE b.status = 'confirmed')               AS bookings_confirmed,
		  COUNT(b.id) FILTER (WHERE b.status = 'cancelled')               AS bookings_cancelled,
		  COALESCE(SUM(b.amount) FILTER (WHERE b.status = 'confirmed'), 0) AS revenue
		FROM gyms g
		JOIN bookings b ON b.gym_id = g.id
		WHERE b.created_at BETWEEN $1 AND $2
		GROUP BY g.id, g.name, g.currency
		ORDER BY g.id`

	stats := []StatsByGym{}
	if err := r.db.SelectContext(ctx, &stats, query, from, to); err != nil {
		return nil, err
	}
	return stats, nil
}
