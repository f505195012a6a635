package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, handler gin.HandlerFunc) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/", handler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var body ErrorResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestFail(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", NotFound("Slot not found"), http.StatusNotFound, "Slot not found"},
		{"wrapped api error", fmt.Errorf("confirm: %w", BadRequest("Payment not successful")), http.StatusBadRequest, "Payment not successful"},
		{"forbidden", Forbidden("You can only cancel your own bookings"), http.StatusForbidden, "You can only cancel your own bookings"},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "Gateway timeout"},
		{"unknown", errors.New("pq: relation does not exist"), http.StatusInternalServerError, "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := serve(t, func(c *gin.Context) { Fail(c, tt.err) })

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, StatusError, body.Status)
			assert.Equal(t, tt.wantMsg, body.Message)
			assert.NotContains(t, w.Body.String(), "pq:")
		})
	}
}

func TestSuccessEnvelopes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ok", func(c *gin.Context) { OK(c, gin.H{"id": 1}) })
	router.GET("/created", func(c *gin.Context) { Created(c, gin.H{"id": 2}) })
	router.GET("/gone", func(c *gin.Context) { NoContent(c) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","data":{"id":1}}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/created", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"status":"success","data":{"id":2}}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/gone", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("card declined")
	err := Upstream("Payment failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Payment failed: card declined", err.Error())
}
