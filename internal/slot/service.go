package slot

import (
	"context"
	"errors"
	"time"

	"gymhub/internal/auth"
	"gymhub/internal/gym"
)

var ErrInvalidDate = errors.New("invalid date")

// GymAuthorizer reports whether the caller may manage a gym.
type GymAuthorizer interface {
	Authorize(ctx context.Context, who auth.Identity, gymID int) error
}

type Service interface {
	Create(ctx context.Context, who auth.Identity, req CreateSlotRequest) (*Slot, error)
	Get(ctx context.Context, id int) (*Slot, error)
	ListByGym(ctx context.Context, gymID int) ([]Slot, error)
	ListAvailable(ctx context.Context, gymID int, date string) ([]Slot, error)
	Update(ctx context.Context, who auth.Identity, id int, req UpdateSlotRequest) (*Slot, error)
	Delete(ctx context.Context, who auth.Identity, id int) error
}

type service struct {
	repo    Repository
	gyms    GymAuthorizer
	timeout time.Duration
}

func NewService(repo Repository, gyms GymAuthorizer, timeout time.Duration) Service {
	return &service{
		repo:    repo,
		gyms:    gyms,
		timeout: timeout,
	}
}

func (s *service) Create(ctx context.Context, who auth.Identity, req CreateSlotRequest) (*Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if req.EndTime <= req.StartTime {
		return nil, ErrInvalidTimes
	}

	if err := s.gyms.Authorize(ctx, who, req.GymID); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, req)
}

func (s *service) Get(ctx context.Context, id int) (*Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByGym(ctx context.Context, gymID int) ([]Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.repo.ListByGym(ctx, gymID)
}

func (s *service) ListAvailable(ctx context.Context, gymID int, date string) ([]Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var day *time.Time
	if date != "" {
		d, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, ErrInvalidDate
		}
		day = &d
	}

	return s.repo.ListAvailable(ctx, gymID, day)
}

func (s *service) Update(ctx context.Context, who auth.Identity, id int, req UpdateSlotRequest) (*Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.authorizeSlot(ctx, who, id); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, id, req)
}

func (s *service) Delete(ctx context.Context, who auth.Identity, id int) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.authorizeSlot(ctx, who, id); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

// authorizeSlot resolves ownership through the slot's gym. A slot of another
// owner's gym reads as not found.
func (s *service) authorizeSlot(ctx context.Context, who auth.Identity, id int) error {
	sl, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.gyms.Authorize(ctx, who, sl.GymID); err != nil {
		if errors.Is(err, gym.ErrGymNotFound) {
			return ErrSlotNotFound
		}
		return err
	}
	return nil
}
