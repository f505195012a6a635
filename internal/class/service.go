package class

import (
	"context"
	"errors"
	"time"

	"gymhub/internal/auth"
	"gymhub/internal/gym"
	"gymhub/internal/metrics"
	"gymhub/internal/user"
)

var ErrInstructorNotFound = errors.New("instructor not found")

type GymAuthorizer interface {
	Authorize(ctx context.Context, who auth.Identity, gymID int) error
}

type UserReader interface {
	FindByID(ctx context.Context, id int) (*user.User, error)
}

type Service interface {
	Create(ctx context.Context, who auth.Identity, req CreateClassRequest) (*Class, error)
	Get(ctx context.Context, id int) (*Class, error)
	ListByGym(ctx context.Context, gymID int) ([]Class, error)
	Delete(ctx context.Context, who auth.Identity, id int) error
	Enroll(ctx context.Context, userID, classID int) (*Class, error)
	Unenroll(ctx context.Context, userID, classID int) (*Class, error)
}

type service struct {
	repo    Repository
	gyms    GymAuthorizer
	users   UserReader
	timeout time.Duration
}

func NewService(repo Repository, gyms GymAuthorizer, users UserReader, timeout time.Duration) Service {
	return &service{repo: repo, gyms: gyms, users: users, timeout: timeout}
}

func (s *service) Create(ctx context.Context, who auth.Identity, req CreateClassRequest) (*Class, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidTimes
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.gyms.Authorize(ctx, who, req.GymID); err != nil {
		return nil, err
	}

	instructor, err := s.users.FindByID(ctx, req.InstructorID)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, ErrInstructorNotFound
	}
	if err != nil {
		return nil, err
	}

	level := req.Level
	if level == "" {
		level = LevelAll
	}

	return s.repo.Create(ctx, &Class{
		GymID:       req.GymID,
		Name:        req.Name,
		Description: req.Description,
		Instructor: Instructor{
			ID:             instructor.ID,
			Name:           instructor.Name,
			Avatar:         instructor.Avatar,
			Specialization: instructor.Specialization,
		},
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Capacity:  req.Capacity,
		Level:     level,
		Type:      req.Type,
	})
}

func (s *service) Get(ctx context.Context, id int) (*Class, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByGym(ctx context.Context, gymID int) ([]Class, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.repo.ListByGym(ctx, gymID)
}

// Delete is limited to the gym's owner. Classes of other owners' gyms read as
// missing.
func (s *service) Delete(ctx context.Context, who auth.Identity, id int) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.gyms.Authorize(ctx, who, c.GymID)
	if errors.Is(err, gym.ErrGymNotFound) {
		return ErrClassNotFound
	}
	if err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

func (s *service) Enroll(ctx context.Context, userID, classID int) (*Class, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	c, err := s.repo.Enroll(ctx, classID, userID)
	metrics.RecordEnrollment("enroll", outcome(err))
	return c, err
}

func (s *service) Unenroll(ctx context.Context, userID, classID int) (*Class, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	c, err := s.repo.Unenroll(ctx, classID, userID)
	metrics.RecordEnrollment("unenroll", outcome(err))
	return c, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrClassFull):
		return "full"
	case errors.Is(err, ErrAlreadyEnrolled), errors.Is(err, ErrNotEnrolled):
		return "conflict"
	case errors.Is(err, ErrClassNotFound):
		return "not_found"
	}
	return "error"
}
