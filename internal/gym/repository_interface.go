package gym

import "context"

// AnyOwner disables the owner filter on scoped writes.
const AnyOwner = 0

type Repository interface {
	Create(ctx context.Context, ownerID int, req CreateGymRequest) (*Gym, error)
	GetByID(ctx context.Context, id int) (*Gym, error)
	List(ctx context.Context, limit, offset int) ([]Gym, error)
	Count(ctx context.Context) (int, error)
	Search(ctx context.Context, f SearchFilter) ([]Gym, error)
	Update(ctx context.Context, id, ownerID int, req UpdateGymRequest) (*Gym, error)
	Delete(ctx context.Context, id, ownerID int) error
	IsOwnedBy(ctx context.Context, id, ownerID int) (bool, error)
}
