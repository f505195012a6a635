package slot

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, req CreateSlotRequest) (*Slot, error)
	GetByID(ctx context.Context, id int) (*Slot, error)
	ListByGym(ctx context.Context, gymID int) ([]Slot, error)
	ListAvailable(ctx context.Context, gymID int, date *time.Time) ([]Slot, error)
	Update(ctx context.Context, id int, req UpdateSlotRequest) (*Slot, error)
	Delete(ctx context.Context, id int) error
	Reserve(ctx context.Context, id int) error
	Release(ctx context.Context, id int) error
}
