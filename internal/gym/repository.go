package gym

import (
	"context"
	"database/sql"
	"errors"

	"gymhub/internal/db"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrGymNotFound = errors.New("gym not found")
	ErrGymBooked   = errors.New("gym has bookings")
)

const gymColumns = `id, owner_id, name, description, street, city, state, zip_code, country,
	facilities, opening_time, closing_time, price_per_day, price_per_week, price_per_month,
	currency, rating, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, ownerID int, req CreateGymRequest) (*Gym, error) {
	query := `
		INSERT INTO gyms (owner_id, name, description, street, city, state, zip_code, country,
			facilities, opening_time, closing_time, price_per_day, price_per_week, price_per_month, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + gymColumns

	facilities := req.Facilities
	if facilities == nil {
		facilities = []string{}
	}

	var g Gym
	err := r.db.GetContext(ctx, &g, query,
		ownerID, req.Name, req.Description,
		req.Address.Street, req.Address.City, req.Address.State, req.Address.ZipCode, req.Address.Country,
		pq.Array(facilities), req.OpeningTime, req.ClosingTime,
		req.Pricing.PerDay, req.Pricing.PerWeek, req.Pricing.PerMonth, req.Currency,
	)
	if err != nil {
		return nil, err
	}

	return &g, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Gym, error) {
	var g Gym
	err := db.RetryRead(ctx, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &g, `SELECT `+gymColumns+` FROM gyms WHERE id = $1`, id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGymNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]Gym, error) {
	query := `SELECT ` + gymColumns + ` FROM gyms ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`

	gyms := []Gym{}
	err := db.RetryRead(ctx, func(ctx context.Context) error {
		gyms = gyms[:0]
		return r.db.SelectContext(ctx, &gyms, query, limit, offset)
	})
	if err != nil {
		return nil, err
	}
	return gyms, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var n int
	err := db.RetryRead(ctx, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM gyms`)
	})
	return n, err
}

func (r *repository) Search(ctx context.Context, f SearchFilter) ([]Gym, error) {
	query := `
		SELECT ` + gymColumns + `
		FROM gyms
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR LOWER(city) = LOWER($2))
		  AND ($3 = '' OR $3 = ANY(facilities))
		ORDER BY rating DESC, id
		LIMIT $4 OFFSET $5`

	gyms := []Gym{}
	err := db.RetryRead(ctx, func(ctx context.Context) error {
		gyms = gyms[:0]
		return r.db.SelectContext(ctx, &gyms, query, f.Query, f.City, f.Facility, f.Limit, f.Offset)
	})
	if err != nil {
		return nil, err
	}
	return gyms, nil
}

// Update applies the present fields to a gym the owner holds. A gym owned by
// someone else is reported as ErrGymNotFound.
func (r *repository) Update(ctx context.Context, id, ownerID int, req UpdateGymRequest) (*Gym, error) {
	var facilities interface{}
	if req.Facilities != nil {
		facilities = pq.Array(*req.Facilities)
	}

	var pricing PricingUpdate
	if req.Pricing != nil {
		pricing = *req.Pricing
	}

	query := `
		UPDATE gyms
		SET name = COALESCE($3, name),
		    description = COALESCE($4, description),
		    street = COALESCE($5, street),
		    city = COALESCE($6, city),
		    state = COALESCE($7, state),
		    zip_code = COALESCE($8, zip_code),
		    country = COALESCE($9, country),
		    facilities = COALESCE($10, facilities),
		    opening_time = COALESCE($11, opening_time),
		    closing_time = COALESCE($12, closing_time),
		    price_per_day = COALESCE($13, price_per_day),
		    price_per_week = COALESCE($14, price_per_week),
		    price_per_month = COALESCE($15, price_per_month),
		    updated_at = NOW()
		WHERE id = $1 AND ($2 = 0 OR owner_id = $2)
		RETURNING ` + gymColumns

	var g Gym
	err := r.db.GetContext(ctx, &g, query,
		id, ownerID,
		req.Name, req.Description, req.Street, req.City, req.State, req.ZipCode, req.Country,
		facilities, req.OpeningTime, req.ClosingTime,
		pricing.PerDay, pricing.PerWeek, pricing.PerMonth,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGymNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *repository) Delete(ctx context.Context, id, ownerID int) error {
	// Bookings reference both the gym and its slots with ON DELETE RESTRICT.
	res, err := r.db.ExecContext(ctx, `DELETE FROM gyms WHERE id = $1 AND ($2 = 0 OR owner_id = $2)`, id, ownerID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrGymBooked
		}
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrGymNotFound
	}
	return nil
}

func (r *repository) IsOwnedBy(ctx context.Context, id, ownerID int) (bool, error) {
	return db.Exists(ctx, r.db,
		`SELECT EXISTS(SELECT 1 FROM gyms WHERE id = $1 AND ($2 = 0 OR owner_id = $2))`, id, ownerID)
}
