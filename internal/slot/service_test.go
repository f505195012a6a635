package slot

import (
	"context"
	"testing"
	"time"

	"gymhub/internal/auth"
	"gymhub/internal/gym"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, req CreateSlotRequest) (*Slot, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Slot), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int) (*Slot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Slot), args.Error(1)
}

func (m *MockRepository) ListByGym(ctx context.Context, gymID int) ([]Slot, error) {
	args := m.Called(ctx, gymID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Slot), args.Error(1)
}

func (m *MockRepository) ListAvailable(ctx context.Context, gymID int, date *time.Time) ([]Slot, error) {
	args := m.Called(ctx, gymID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Slot), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id int, req UpdateSlotRequest) (*Slot, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Slot), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) Reserve(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) Release(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

type MockGyms struct {
	mock.Mock
}

func (m *MockGyms) Authorize(ctx context.Context, who auth.Identity, gymID int) error {
	return m.Called(ctx, who, gymID).Error(0)
}

var owner = auth.Identity{UserID: 7, Role: auth.RoleOwner}

func TestService_CreateRequiresGymOwnership(t *testing.T) {
	repo, gyms := new(MockRepository), new(MockGyms)
	svc := NewService(repo, gyms, 5*time.Second)

	gyms.On("Authorize", mock.Anything, owner, 2).Return(gym.ErrGymNotFound)

	_, err := svc.Create(context.Background(), owner, CreateSlotRequest{GymID: 2, StartTime: "09:00", EndTime: "10:00", Capacity: 5})
	assert.ErrorIs(t, err, gym.ErrGymNotFound)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_CreateRejectsInvertedTimes(t *testing.T) {
	svc := NewService(new(MockRepository), new(MockGyms), 5*time.Second)

	_, err := svc.Create(context.Background(), owner, CreateSlotRequest{GymID: 2, StartTime: "10:00", EndTime: "09:00", Capacity: 5})
	assert.ErrorIs(t, err, ErrInvalidTimes)
}

func TestService_Create(t *testing.T) {
	repo, gyms := new(MockRepository), new(MockGyms)
	svc := NewService(repo, gyms, 5*time.Second)
	req := CreateSlotRequest{GymID: 2, Date: "2030-01-01", StartTime: "09:00", EndTime: "10:00", Capacity: 5}

	gyms.On("Authorize", mock.Anything, owner, 2).Return(nil)
	repo.On("Create", mock.Anything, req).Return(&Slot{ID: 1, GymID: 2, Capacity: 5, Available: 5}, nil)

	s, err := svc.Create(context.Background(), owner, req)
	require.NoError(t, err)
	assert.Equal(t, 5, s.Available)
}

func TestService_UpdateForeignSlotReadsAsNotFound(t *testing.T) {
	repo, gyms := new(MockRepository), new(MockGyms)
	svc := NewService(repo, gyms, 5*time.Second)

	repo.On("GetByID", mock.Anything, 1).Return(&Slot{ID: 1, GymID: 2}, nil)
	gyms.On("Authorize", mock.Anything, owner, 2).Return(gym.ErrGymNotFound)

	_, err := svc.Update(context.Background(), owner, 1, UpdateSlotRequest{})
	assert.ErrorIs(t, err, ErrSlotNotFound)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_DeleteOwnSlot(t *testing.T) {
	repo, gyms := new(MockRepository), new(MockGyms)
	svc := NewService(repo, gyms, 5*time.Second)

	repo.On("GetByID", mock.Anything, 1).Return(&Slot{ID: 1, GymID: 2}, nil)
	gyms.On("Authorize", mock.Anything, owner, 2).Return(nil)
	repo.On("Delete", mock.Anything, 1).Return(nil)

	assert.NoError(t, svc.Delete(context.Background(), owner, 1))
	repo.AssertExpectations(t)
}

func TestService_ListAvailableParsesDate(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockGyms), 5*time.Second)

	repo.On("ListAvailable", mock.Anything, 2, mock.MatchedBy(func(d *time.Time) bool {
		return d != nil && d.Format("2006-01-02") == "2030-03-04"
	})).Return([]Slot{{ID: 1}}, nil)

	slots, err := svc.ListAvailable(context.Background(), 2, "2030-03-04")
	require.NoError(t, err)
	assert.Len(t, slots, 1)

	_, err = svc.ListAvailable(context.Background(), 2, "04/03/2030")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
