package user

import "context"

type Repository interface {
	Create(ctx context.Context, name, email, passwordHash, role string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id int, req UpdateProfileRequest) (*User, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	List(ctx context.Context, limit, offset int) ([]User, error)
}
