package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymhub/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, name, email, passwordHash, role string) (*User, error) {
	args := m.Called(ctx, name, email, passwordHash, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id int) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) UpdateProfile(ctx context.Context, id int, req UpdateProfileRequest) (*User, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *MockRepository) List(ctx context.Context, limit, offset int) ([]User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]User), args.Error(1)
}

func newTestService(repo Repository) Service {
	return NewService(repo, testSecret, time.Second)
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name          string
		req           RegisterRequest
		setupMock     func(*MockRepository)
		expectedError error
	}{
		{
			name: "defaults to user role",
			req:  RegisterRequest{Name: "Ann", Email: "a@b.com", Password: "password123"},
			setupMock: func(m *MockRepository) {
				m.On("EmailExists", mock.Anything, "a@b.com").Return(false, nil)
				m.On("Create", mock.Anything, "Ann", "a@b.com", mock.Anything, auth.RoleUser).
					Return(&User{ID: 1, Name: "Ann", Email: "a@b.com", Role: auth.RoleUser}, nil)
			},
		},
		{
			name: "owner registration",
			req:  RegisterRequest{Name: "Olga", Email: "o@b.com", Password: "password123", Role: auth.RoleOwner},
			setupMock: func(m *MockRepository) {
				m.On("EmailExists", mock.Anything, "o@b.com").Return(false, nil)
				m.On("Create", mock.Anything, "Olga", "o@b.com", mock.Anything, auth.RoleOwner).
					Return(&User{ID: 2, Name: "Olga", Email: "o@b.com", Role: auth.RoleOwner}, nil)
			},
		},
		{
			name: "email already in use",
			req:  RegisterRequest{Name: "Ann", Email: "a@b.com", Password: "password123"},
			setupMock: func(m *MockRepository) {
				m.On("EmailExists", mock.Anything, "a@b.com").Return(true, nil)
			},
			expectedError: ErrEmailExists,
		},
		{
			name: "lost the race to a concurrent registration",
			req:  RegisterRequest{Name: "Ann", Email: "a@b.com", Password: "password123"},
			setupMock: func(m *MockRepository) {
				m.On("EmailExists", mock.Anything, "a@b.com").Return(false, nil)
				m.On("Create", mock.Anything, "Ann", "a@b.com", mock.Anything, auth.RoleUser).Return(nil, ErrEmailExists)
			},
			expectedError: ErrEmailExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			tt.setupMock(mockRepo)

			u, token, err := newTestService(mockRepo).Register(context.Background(), tt.req)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, u)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				claims, err := auth.ValidateToken(token, testSecret)
				require.NoError(t, err)
				assert.Equal(t, u.ID, claims.UserID)
				assert.Equal(t, u.Role, claims.Role)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestService_Login(t *testing.T) {
	passwordHash, _ := auth.HashPassword("password123")
	stored := &User{ID: 5, Email: "a@b.com", PasswordHash: passwordHash, Role: auth.RoleOwner}

	t.Run("correct password", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("FindByEmail", mock.Anything, "a@b.com").Return(stored, nil)

		u, token, err := newTestService(mockRepo).Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, 5, u.ID)

		claims, err := auth.ValidateToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, 5, claims.UserID)
		assert.Equal(t, auth.RoleOwner, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("FindByEmail", mock.Anything, "a@b.com").Return(stored, nil)

		_, token, err := newTestService(mockRepo).Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Empty(t, token)
	})

	t.Run("unknown email", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("FindByEmail", mock.Anything, "x@b.com").Return(nil, ErrUserNotFound)

		_, _, err := newTestService(mockRepo).Login(context.Background(), LoginRequest{Email: "x@b.com", Password: "password123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("database failure is not masked", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("FindByEmail", mock.Anything, "a@b.com").Return(nil, errors.New("connection refused"))

		_, _, err := newTestService(mockRepo).Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "password123"})
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_ChangePassword(t *testing.T) {
	passwordHash, _ := auth.HashPassword("old-password")
	stored := &User{ID: 3, Email: "a@b.com", PasswordHash: passwordHash, Role: auth.RoleUser}

	t.Run("rotates credential", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("FindByID", mock.Anything, 3).Return(stored, nil)
		mockRepo.On("UpdatePassword", mock.Anything, 3, mock.MatchedBy(func(hash string) bool {
			return auth.CheckPassword(hash, "new-password")
		})).Return(nil)

		_, token, err := newTestService(mockRepo).ChangePassword(context.Background(), 3, ChangePasswordRequest{
			CurrentPassword: "old-password",
			NewPassword:     "new-password",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		mockRepo.AssertExpectations(t)
	})

	t.Run("current password must match", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("FindByID", mock.Anything, 3).Return(stored, nil)

		_, _, err := newTestService(mockRepo).ChangePassword(context.Background(), 3, ChangePasswordRequest{
			CurrentPassword: "guess",
			NewPassword:     "new-password",
		})
		assert.ErrorIs(t, err, ErrWrongPassword)
		mockRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_List(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("List", mock.Anything, 20, 20).Return([]User{{ID: 21}}, nil)

	users, err := newTestService(mockRepo).List(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	mockRepo.AssertExpectations(t)
}
