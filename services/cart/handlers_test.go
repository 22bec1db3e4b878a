package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
)

func TestStatusFromError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: missing owner", ErrInvalidRequest), http.StatusBadRequest},
		{fmt.Errorf("%w: product x", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: not yours", ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: empty cart", ErrInvalidState), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: only 2 in stock", ErrStockConflict), http.StatusConflict},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		assert.Equal(t, c.status, statusFromError(c.err), "error: %v", c.err)
	}
}

func TestOwnerFromRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	c.Request.Header.Set("X-Session-ID", "session-1")

	owner := ownerFromRequest(c)
	assert.True(t, owner.IsGuest())

	// Usuário autenticado tem precedência sobre a sessão
	c.Request.Header.Set("X-User-ID", "user-1")
	owner = ownerFromRequest(c)
	assert.True(t, owner.IsUser())

	c.Request.Header.Del("X-User-ID")
	c.Request.Header.Del("X-Session-ID")
	owner = ownerFromRequest(c)
	assert.False(t, owner.IsValid())
}

func TestAddItem_BadRequestBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCartHandler(nil, otel.Tracer("test"))

	r := gin.New()
	r.POST("/api/cart/items", handler.AddItem)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(`{"quantity": 0}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
