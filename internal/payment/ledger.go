package payment

import (
	"context"

	"gymhub/internal/db"

	"github.com/jmoiron/sqlx"
)

const recordColumns = `id, booking_id, intent_id, kind, amount, currency, status, idempotency_key, created_at`

// Ledger records gateway side effects.
type Ledger interface {
	Record(ctx context.Context, rec Record) (*Record, error)
	ListByBooking(ctx context.Context, bookingID int) ([]Record, error)
	ListByIntent(ctx context.Context, intentID string) ([]Record, error)
}

type ledger struct {
	db *sqlx.DB
}

func NewLedger(db *sqlx.DB) Ledger {
	return &ledger{db: db}
}

func (l *ledger) Record(ctx context.Context, rec Record) (*Record, error) {
	query := `
		INSERT INTO payments (booking_id, intent_id, kind, amount, currency, status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + recordColumns

	var out Record
	err := l.db.GetContext(ctx, &out, query,
		rec.BookingID, rec.IntentID, rec.Kind, rec.Amount, rec.Currency, rec.Status, rec.IdempotencyKey,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *ledger) ListByBooking(ctx context.Context, bookingID int) ([]Record, error) {
	return l.list(ctx, `SELECT `+recordColumns+` FROM payments WHERE booking_id = $1 ORDER BY created_at, id`, bookingID)
}

func (l *ledger) ListByIntent(ctx context.Context, intentID string) ([]Record, error) {
	return l.list(ctx, `SELECT `+recordColumns+` FROM payments WHERE intent_id = $1 ORDER BY created_at, id`, intentID)
}

func (l *ledger) list(ctx context.Context, query string, arg interface{}) ([]Record, error) {
	records := []Record{}
	err := db.RetryRead(ctx, func(ctx context.Context) error {
		records = records[:0]
		return l.db.SelectContext(ctx, &records, query, arg)
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
