package booking

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, b *Booking) (*Booking, error)
	GetByID(ctx context.Context, id int) (*Booking, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*Booking, error)
	ListByUser(ctx context.Context, userID int) ([]Booking, error)
	ListByGym(ctx context.Context, gymID int) ([]Booking, error)
	// Confirm moves a pending booking to confirmed and takes a slot spot in
	// one transaction.
	Confirm(ctx context.Context, id, slotID int) error
	// Cancel moves a booking to cancelled and releases its spot when it held
	// one, in one transaction.
	Cancel(ctx context.Context, id int) (*Booking, error)
	StatsByDay(ctx context.Context, from, to time.Time) ([]StatsByDay, error)
	StatsByGym(ctx context.Context, from, to time.Time) ([]StatsByGym, error)
}
