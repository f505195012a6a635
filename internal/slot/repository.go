package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gymhub/internal/db"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrSlotNotFound = errors.New("slot not found")
	ErrSlotFull     = errors.New("slot is full")
	ErrInvalidTimes = errors.New("slot must end after it starts")
	ErrSlotBooked   = errors.New("slot has bookings")
)

const slotColumns = `id, gym_id, date, start_time, end_time, capacity, available, closed, status, created_at, updated_at`

// statusCase renders DeriveStatus as SQL over the post-update values.
func statusCase(available, closed string) string {
	return fmt.Sprintf(
		`CASE WHEN %s THEN 'closed' WHEN %s <= 0 THEN 'full' ELSE 'available' END`,
		closed, available,
	)
}

var (
	reserveQuery = `
		UPDATE slots
		SET available = available - 1,
		    status = ` + statusCase("available - 1", "closed") + `,
		    updated_at = NOW()
		WHERE id = $1 AND available > 0 AND NOT closed`

	releaseQuery = `
		UPDATE slots
		SET available = LEAST(capacity, available + 1),
		    status = ` + statusCase("LEAST(capacity, available + 1)", "closed") + `,
		    updated_at = NOW()
		WHERE id = $1`
)

// Reserve takes one spot in a single conditional statement. It reports
// ErrSlotFull when no spot is left or the slot is closed.
func Reserve(ctx context.Context, ex sqlx.ExecerContext, id int) error {
	res, err := ex.ExecContext(ctx, reserveQuery, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSlotFull
	}
	return nil
}

// Release gives one spot back, never exceeding capacity.
func Release(ctx context.Context, ex sqlx.ExecerContext, id int) error {
	res, err := ex.ExecContext(ctx, releaseQuery, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSlotNotFound
	}
	return nil
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, req CreateSlotRequest) (*Slot, error) {
	query := `
		INSERT INTO slots (gym_id, date, start_time, end_time, capacity, available, closed, status)
		VALUES ($1, $2, $3, $4, $5, $5, $6, $7)
		RETURNING ` + slotColumns

	var s Slot
	err := r.db.GetContext(ctx, &s, query,
		req.GymID, req.Date, req.StartTime, req.EndTime, req.Capacity, req.Closed,
		DeriveStatus(req.Capacity, req.Closed),
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Slot, error) {
	var s Slot
	err := db.RetryRead(ctx, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &s, `SELECT `+slotColumns+` FROM slots WHERE id = $1`, id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) ListByGym(ctx context.Context, gymID int) ([]Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE gym_id = $1 ORDER BY date, start_time`
	return r.selectSlots(ctx, query, gymID)
}

// ListAvailable returns open slots with spots left from today on, or on a
// single date when one is given.
func (r *repository) ListAvailable(ctx context.Context, gymID int, date *time.Time) ([]Slot, error) {
	if date != nil {
		query := `
			SELECT ` + slotColumns + `
			FROM slots
			WHERE gym_id = $1 AND date = $2 AND available > 0 AND NOT closed
			ORDER BY start_time`
		return r.selectSlots(ctx, query, gymID, date.Format(dateLayout))
	}

	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE gym_id = $1 AND date >= CURRENT_DATE AND available > 0 AND NOT closed
		ORDER BY date, start_time`
	return r.selectSlots(ctx, query, gymID)
}

func (r *repository) selectSlots(ctx context.Context, query string, args ...interface{}) ([]Slot, error) {
	slots := []Slot{}
	err := db.RetryRead(ctx, func(ctx context.Context) error {
		slots = slots[:0]
		return r.db.SelectContext(ctx, &slots, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// Update applies AdjustCapacity inside the statement so concurrent reserves
// and releases are never lost.
func (r *repository) Update(ctx context.Context, id int, req UpdateSlotRequest) (*Slot, error) {
	const (
		newCapacity  = `COALESCE($5, capacity)`
		newAvailable = `LEAST(GREATEST(available + (` + newCapacity + ` - capacity), 0), ` + newCapacity + `)`
		newClosed    = `COALESCE($6, closed)`
	)

	query := `
		UPDATE slots
		SET date = COALESCE($2::date, date),
		    start_time = COALESCE($3, start_time),
		    end_time = COALESCE($4, end_time),
		    available = ` + newAvailable + `,
		    capacity = ` + newCapacity + `,
		    closed = ` + newClosed + `,
		    status = ` + statusCase(newAvailable, newClosed) + `,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + slotColumns

	var s Slot
	err := r.db.GetContext(ctx, &s, query,
		id, req.Date, req.StartTime, req.EndTime, req.Capacity, req.Closed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Constraint == "slots_time_order" {
		return nil, ErrInvalidTimes
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM slots WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrSlotBooked
		}
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func (r *repository) Reserve(ctx context.Context, id int) error {
	return Reserve(ctx, r.db, id)
}

func (r *repository) Release(ctx context.Context, id int) error {
	return Release(ctx, r.db, id)
}
