package class

import (
	"context"
	"testing"
	"time"

	"gymhub/internal/auth"
	"gymhub/internal/gym"
	"gymhub/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, c *Class) (*Class, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Class), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int) (*Class, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Class), args.Error(1)
}

func (m *MockRepository) ListByGym(ctx context.Context, gymID int) ([]Class, error) {
	args := m.Called(ctx, gymID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Class), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) Enroll(ctx context.Context, classID, userID int) (*Class, error) {
	args := m.Called(ctx, classID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Class), args.Error(1)
}

func (m *MockRepository) Unenroll(ctx context.Context, classID, userID int) (*Class, error) {
	args := m.Called(ctx, classID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Class), args.Error(1)
}

type MockGyms struct {
	mock.Mock
}

func (m *MockGyms) Authorize(ctx context.Context, who auth.Identity, gymID int) error {
	return m.Called(ctx, who, gymID).Error(0)
}

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) FindByID(ctx context.Context, id int) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

var owner = auth.Identity{UserID: 7, Role: auth.RoleOwner}

func newTestService() (Service, *MockRepository, *MockGyms, *MockUsers) {
	repo, gyms, users := new(MockRepository), new(MockGyms), new(MockUsers)
	return NewService(repo, gyms, users, time.Second), repo, gyms, users
}

func createRequest() CreateClassRequest {
	start := time.Date(2030, 1, 15, 18, 0, 0, 0, time.UTC)
	return CreateClassRequest{
		GymID: 3, Name: "Vinyasa", InstructorID: 9,
		StartTime: start, EndTime: start.Add(time.Hour), Capacity: 12,
	}
}

func TestService_CreateCopiesInstructor(t *testing.T) {
	svc, repo, gyms, users := newTestService()
	gyms.On("Authorize", mock.Anything, owner, 3).Return(nil)
	users.On("FindByID", mock.Anything, 9).
		Return(&user.User{ID: 9, Name: "Kim", Avatar: "kim.png", Specialization: "yoga"}, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *Class) bool {
		return c.Instructor == Instructor{ID: 9, Name: "Kim", Avatar: "kim.png", Specialization: "yoga"} &&
			c.Level == LevelAll
	})).Return(&Class{ID: 1, Name: "Vinyasa"}, nil)

	c, err := svc.Create(context.Background(), owner, createRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, c.ID)
	repo.AssertExpectations(t)
}

func TestService_CreateRejectsReversedTimes(t *testing.T) {
	svc, _, gyms, _ := newTestService()
	req := createRequest()
	req.EndTime = req.StartTime

	_, err := svc.Create(context.Background(), owner, req)
	assert.ErrorIs(t, err, ErrInvalidTimes)
	gyms.AssertNotCalled(t, "Authorize", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_CreateForeignGym(t *testing.T) {
	svc, repo, gyms, _ := newTestService()
	gyms.On("Authorize", mock.Anything, owner, 3).Return(gym.ErrGymNotFound)

	_, err := svc.Create(context.Background(), owner, createRequest())
	assert.ErrorIs(t, err, gym.ErrGymNotFound)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_CreateUnknownInstructor(t *testing.T) {
	svc, _, gyms, users := newTestService()
	gyms.On("Authorize", mock.Anything, owner, 3).Return(nil)
	users.On("FindByID", mock.Anything, 9).Return(nil, user.ErrUserNotFound)

	_, err := svc.Create(context.Background(), owner, createRequest())
	assert.ErrorIs(t, err, ErrInstructorNotFound)
}

func TestService_DeleteForeignClassReadsAsMissing(t *testing.T) {
	svc, repo, gyms, _ := newTestService()
	repo.On("GetByID", mock.Anything, 1).Return(&Class{ID: 1, GymID: 3}, nil)
	gyms.On("Authorize", mock.Anything, owner, 3).Return(gym.ErrGymNotFound)

	err := svc.Delete(context.Background(), owner, 1)
	assert.ErrorIs(t, err, ErrClassNotFound)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestService_EnrollPassesThroughConflicts(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.On("Enroll", mock.Anything, 1, 42).Return(nil, ErrClassFull)

	_, err := svc.Enroll(context.Background(), 42, 1)
	assert.ErrorIs(t, err, ErrClassFull)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", outcome(nil))
	assert.Equal(t, "full", outcome(ErrClassFull))
	assert.Equal(t, "conflict", outcome(ErrAlreadyEnrolled))
	assert.Equal(t, "conflict", outcome(ErrNotEnrolled))
	assert.Equal(t, "not_found", outcome(ErrClassNotFound))
}

func TestClass_Spots(t *testing.T) {
	assert.Equal(t, 2, (&Class{Capacity: 5, Enrolled: 3}).Spots())
	assert.Equal(t, 0, (&Class{Capacity: 5, Enrolled: 5}).Spots())
}
