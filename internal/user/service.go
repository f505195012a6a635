package user

import (
	"context"
	"errors"
	"time"

	"gymhub/internal/auth"
)

var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrWrongPassword      = errors.New("current password is wrong")
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, string, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	UpdateProfile(ctx context.Context, userID int, req UpdateProfileRequest) (*User, error)
	ChangePassword(ctx context.Context, userID int, req ChangePasswordRequest) (*User, string, error)
	List(ctx context.Context, page, limit int) ([]User, error)
}

type service struct {
	repo      Repository
	jwtSecret string
	timeout   time.Duration
}

func NewService(repo Repository, jwtSecret string, timeout time.Duration) Service {
	return &service{
		repo:      repo,
		jwtSecret: jwtSecret,
		timeout:   timeout,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	role := req.Role
	if role == "" {
		role = auth.RoleUser
	}

	u, err := s.repo.Create(ctx, req.Name, req.Email, passwordHash, role)
	if err != nil {
		return nil, "", err
	}

	token, err := auth.GenerateToken(u.ID, u.Email, u.Role, s.jwtSecret)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	u, err := s.repo.FindByEmail(ctx, req.Email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(u.ID, u.Email, u.Role, s.jwtSecret)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

func (s *service) GetByID(ctx context.Context, userID int) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.repo.FindByID(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID int, req UpdateProfileRequest) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.repo.UpdateProfile(ctx, userID, req)
}

// ChangePassword re-verifies the current credential and returns a fresh token.
// Tokens issued before the change stay valid until they expire.
func (s *service) ChangePassword(ctx context.Context, userID int, req ChangePasswordRequest) (*User, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	if !auth.CheckPassword(u.PasswordHash, req.CurrentPassword) {
		return nil, "", ErrWrongPassword
	}

	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return nil, "", err
	}

	if err := s.repo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return nil, "", err
	}

	token, err := auth.GenerateToken(u.ID, u.Email, u.Role, s.jwtSecret)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

func (s *service) List(ctx context.Context, page, limit int) ([]User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.List(ctx, limit, (page-1)*limit)
}
