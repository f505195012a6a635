package class

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"gymhub/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, who auth.Identity, req CreateClassRequest) (*Class, error) {
	args := m.Called(ctx, who, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Class), args.Error(1)
}

func (m *MockService) Get(ctx context.Context, id int) (*Class, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Class), args.Error(1)
}

func (m *MockService) ListByGym(ctx context.Context, gymID int) ([]Class, error) {
	args := m.Called(ctx, gymID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Class), args.Error(1)
}

func (m *MockService) Delete(ctx context.Context, who auth.Identity, id int) error {
	return m.Called(ctx, who, id).Error(0)
}

func (m *MockService) Enroll(ctx context.Context, userID, classID int) (*Class, error) {
	args := m.Called(ctx, userID, classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Class), args.Error(1)
}

func (m *MockService) Unenroll(ctx context.Context, userID, classID int) (*Class, error) {
	args := m.Called(ctx, userID, classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Class), args.Error(1)
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)

	router := gin.New()
	router.GET("/classes/gym/:gymId", h.ListByGym)
	router.GET("/classes/:id", h.Get)

	authed := router.Group("/", func(c *gin.Context) {
		c.Set("user_id", owner.UserID)
		c.Set("user_role", owner.Role)
	})
	authed.POST("/classes", h.Create)
	authed.DELETE("/classes/:id", h.Delete)
	authed.POST("/classes/:id/enroll", h.Enroll)
	authed.DELETE("/classes/:id/enroll", h.Unenroll)
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_Create(t *testing.T) {
	svc := new(MockService)
	svc.On("Create", mock.Anything, owner, mock.MatchedBy(func(req CreateClassRequest) bool {
		return req.GymID == 3 && req.Level == LevelBeginner && req.EndTime.Sub(req.StartTime).Minutes() == 60
	})).Return(&Class{ID: 1, Name: "Vinyasa", DurationMinutes: 60, Instructor: Instructor{ID: 9, Name: "Kim"}}, nil)

	w := doJSON(setupRouter(svc), http.MethodPost, "/classes",
		`{"gymId":3,"name":"Vinyasa","instructorId":9,"startTime":"2030-01-15T18:00:00Z","endTime":"2030-01-15T19:00:00Z","capacity":12,"level":"beginner"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"duration_minutes":60`)
	assert.Contains(t, w.Body.String(), `"instructor":{"id":9,"name":"Kim"`)
}

func TestHandler_CreateRejectsUnknownLevel(t *testing.T) {
	svc := new(MockService)

	w := doJSON(setupRouter(svc), http.MethodPost, "/classes",
		`{"gymId":3,"name":"Vinyasa","instructorId":9,"startTime":"2030-01-15T18:00:00Z","endTime":"2030-01-15T19:00:00Z","capacity":12,"level":"expert"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_EnrollConflicts(t *testing.T) {
	tests := []struct {
		err     error
		message string
	}{
		{ErrClassFull, "Class is full"},
		{ErrAlreadyEnrolled, "Already enrolled"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Enroll", mock.Anything, owner.UserID, 1).Return(nil, tt.err)

			w := doJSON(setupRouter(svc), http.MethodPost, "/classes/1/enroll", "")

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
		})
	}
}

func TestHandler_UnenrollNotEnrolled(t *testing.T) {
	svc := new(MockService)
	svc.On("Unenroll", mock.Anything, owner.UserID, 1).Return(nil, ErrNotEnrolled)

	w := doJSON(setupRouter(svc), http.MethodDelete, "/classes/1/enroll", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"Not enrolled"}`, w.Body.String())
}

func TestHandler_GetMissing(t *testing.T) {
	svc := new(MockService)
	svc.On("Get", mock.Anything, 4).Return(nil, ErrClassNotFound)

	w := doJSON(setupRouter(svc), http.MethodGet, "/classes/4", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}
