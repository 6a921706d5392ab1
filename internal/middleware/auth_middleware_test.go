package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smartcart/smartcart-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const middlewareTestSecret = "middleware-test-secret"

func newProtectedRouter(t *testing.T, handlers ...gin.HandlerFunc) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()

	chain := append(handlers, func(c *gin.Context) {
		userID, _ := GetUserID(c)
		email, _ := GetUserEmail(c)
		role, _ := GetUserRole(c)
		c.JSON(http.StatusOK, gin.H{
			"user_id": userID,
			"email":   email,
			"role":    role,
		})
	})
	router.GET("/protected", chain...)
	return router
}

func issueAccessToken(t *testing.T, userID uint, email, role string) string {
	t.Helper()

	pair, err := util.GenerateTokenPair(userID, email, role, middlewareTestSecret, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return pair.AccessToken
}

func requestWithAuth(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthenticate_ValidToken(t *testing.T) {
	m := NewAuthMiddleware(middlewareTestSecret)
	router := newProtectedRouter(t, m.Authenticate())

	token := issueAccessToken(t, 7, "shopper@smartcart.dev", "user")
	w := requestWithAuth(router, "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "shopper@smartcart.dev")
}

func TestAuthenticate_Rejections(t *testing.T) {
	m := NewAuthMiddleware(middlewareTestSecret)
	router := newProtectedRouter(t, m.Authenticate())

	tests := []struct {
		name        string
		header      string
		wantMessage string
	}{
		{name: "missing header", header: "", wantMessage: "Authorization header is required"},
		{name: "no bearer prefix", header: "some-raw-token"},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz"},
		{name: "empty bearer token", header: "Bearer "},
		{name: "garbage token", header: "Bearer not.a.jwt", wantMessage: "Invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := requestWithAuth(router, tt.header)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			if tt.wantMessage != "" {
				assert.Contains(t, w.Body.String(), tt.wantMessage)
			}
		})
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	m := NewAuthMiddleware(middlewareTestSecret)
	router := newProtectedRouter(t, m.Authenticate())

	pair, err := util.GenerateTokenPair(1, "shopper@smartcart.dev", "user", middlewareTestSecret, time.Nanosecond, time.Nanosecond)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	w := requestWithAuth(router, "Bearer "+pair.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	m := NewAuthMiddleware(middlewareTestSecret)
	router := newProtectedRouter(t, m.Authenticate(), m.RequireRole("admin"))

	t.Run("admin allowed", func(t *testing.T) {
		token := issueAccessToken(t, 1, "admin@smartcart.dev", "admin")
		w := requestWithAuth(router, "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("regular user forbidden", func(t *testing.T) {
		token := issueAccessToken(t, 2, "shopper@smartcart.dev", "user")
		w := requestWithAuth(router, "Bearer "+token)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "Insufficient permissions")
	})
}

func TestOptionalAuthenticate(t *testing.T) {
	m := NewAuthMiddleware(middlewareTestSecret)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/feed", m.OptionalAuthenticate(), func(c *gin.Context) {
		userID, authenticated := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "authenticated": authenticated})
	})

	t.Run("anonymous request passes", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/feed", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"authenticated":false`)
	})

	t.Run("valid token identifies user", func(t *testing.T) {
		token := issueAccessToken(t, 42, "shopper@smartcart.dev", "user")
		req := httptest.NewRequest("GET", "/feed", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":42`)
	})
}

func TestContextAccessors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	userID, ok := GetUserID(c)
	assert.False(t, ok)
	assert.Zero(t, userID)

	email, ok := GetUserEmail(c)
	assert.False(t, ok)
	assert.Empty(t, email)

	role, ok := GetUserRole(c)
	assert.False(t, ok)
	assert.Empty(t, role)

	token, ok := GetToken(c)
	assert.False(t, ok)
	assert.Empty(t, token)

	c.Set("user_id", uint(9))
	c.Set("user_email", "shopper@smartcart.dev")
	c.Set("user_role", "admin")
	c.Set("token", "raw-token")

	userID, ok = GetUserID(c)
	assert.True(t, ok)
	assert.Equal(t, uint(9), userID)

	email, ok = GetUserEmail(c)
	assert.True(t, ok)
	assert.Equal(t, "shopper@smartcart.dev", email)

	role, ok = GetUserRole(c)
	assert.True(t, ok)
	assert.Equal(t, "admin", role)

	token, ok = GetToken(c)
	assert.True(t, ok)
	assert.Equal(t, "raw-token", token)
}
