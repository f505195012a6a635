package class

import "context"

type Repository interface {
	Create(ctx context.Context, c *Class) (*Class, error)
	GetByID(ctx context.Context, id int) (*Class, error)
	ListByGym(ctx context.Context, gymID int) ([]Class, error)
	Delete(ctx context.Context, id int) error
	// Enroll records the enrollment and takes a place in one transaction.
	Enroll(ctx context.Context, classID, userID int) (*Class, error)
	// Unenroll removes the enrollment and frees its place in one transaction.
	Unenroll(ctx context.Context, classID, userID int) (*Class, error)
}
