package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"fleet-service/internal/model"
	"fleet-service/internal/service"
)

type stubVerifier struct {
	principal model.Principal
	err       error
}

func (s stubVerifier) Verify(_ context.Context, _ string) (model.Principal, error) {
	return s.principal, s.err
}

func newAuthTestRouter(verifier SessionVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", Auth(verifier), func(c *gin.Context) {
		principal, ok := MustPrincipal(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "principal missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"actor_id": principal.ActorID})
	})
	return router
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	principal := model.Principal{ActorID: uuid.New(), Role: model.RoleDispatcher}
	router := newAuthTestRouter(stubVerifier{principal: principal})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), principal.ActorID.String())
}

func TestAuthMissingHeader(t *testing.T) {
	router := newAuthTestRouter(stubVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMalformedHeader(t *testing.T) {
	router := newAuthTestRouter(stubVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectedToken(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"invalid", service.ErrTokenInvalid},
		{"expired", service.ErrTokenExpired},
		{"inactive account", service.ErrAccountInactive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newAuthTestRouter(stubVerifier{err: tc.err})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer bad-token")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
