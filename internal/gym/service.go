package gym

import (
	"context"
	"strconv"
	"strings"
	"time"

	"gymhub/internal/auth"
	"gymhub/internal/cache"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Service interface {
	Create(ctx context.Context, ownerID int, req CreateGymRequest) (*Gym, error)
	Get(ctx context.Context, id int) (*Gym, error)
	List(ctx context.Context, page, limit int) (*Page, error)
	Search(ctx context.Context, f SearchFilter) ([]Gym, error)
	Update(ctx context.Context, who auth.Identity, id int, req UpdateGymRequest) (*Gym, error)
	Delete(ctx context.Context, who auth.Identity, id int) error
	// Authorize reports ErrGymNotFound unless who may manage the gym.
	Authorize(ctx context.Context, who auth.Identity, gymID int) error
}

type service struct {
	repo            Repository
	cache           *cache.Cache
	defaultCurrency string
	timeout         time.Duration
}

func NewService(repo Repository, c *cache.Cache, defaultCurrency string, timeout time.Duration) Service {
	return &service{
		repo:            repo,
		cache:           c,
		defaultCurrency: defaultCurrency,
		timeout:         timeout,
	}
}

func cacheKey(id int) string {
	return "gym:" + strconv.Itoa(id)
}

// scope maps the caller to the owner filter used by scoped writes.
func scope(who auth.Identity) int {
	if who.IsAdmin() {
		return AnyOwner
	}
	return who.UserID
}

func (s *service) Create(ctx context.Context, ownerID int, req CreateGymRequest) (*Gym, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if req.Currency == "" {
		req.Currency = s.defaultCurrency
	}
	req.Currency = strings.ToLower(req.Currency)

	return s.repo.Create(ctx, ownerID, req)
}

func (s *service) Get(ctx context.Context, id int) (*Gym, error) {
	var cached Gym
	if s.cache.Get(ctx, cacheKey(id), &cached) {
		return &cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, cacheKey(id), g)
	return g, nil
}

func (s *service) List(ctx context.Context, page, limit int) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	page, limit = normalizePage(page, limit)

	gyms, err := s.repo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &Page{Items: gyms, Page: page, Limit: limit, Total: total}, nil
}

func (s *service) Search(ctx context.Context, f SearchFilter) ([]Gym, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	f.Query = strings.TrimSpace(f.Query)
	f.City = strings.TrimSpace(f.City)
	f.Facility = strings.TrimSpace(f.Facility)
	if f.Limit <= 0 || f.Limit > maxPageSize {
		f.Limit = defaultPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	return s.repo.Search(ctx, f)
}

func (s *service) Update(ctx context.Context, who auth.Identity, id int, req UpdateGymRequest) (*Gym, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	g, err := s.repo.Update(ctx, id, scope(who), req)
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, cacheKey(id))
	return g, nil
}

func (s *service) Delete(ctx context.Context, who auth.Identity, id int) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id, scope(who)); err != nil {
		return err
	}

	s.cache.Delete(ctx, cacheKey(id))
	return nil
}

func (s *service) Authorize(ctx context.Context, who auth.Identity, gymID int) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ok, err := s.repo.IsOwnedBy(ctx, gymID, scope(who))
	if err != nil {
		return err
	}
	if !ok {
		return ErrGymNotFound
	}
	return nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	return page, limit
}
