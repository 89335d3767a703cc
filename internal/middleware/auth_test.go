package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coach_backend/internal/model"
	"coach_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const testSecret = "middleware-test-secret-0123456789abcdef"

func protectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(testSecret), func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": claims.UserID, "email": claims.Email})
	})
	return r
}

func token(t *testing.T, secret string, ttl time.Duration) string {
	t.Helper()
	user := &model.User{Email: "ada@example.com"}
	user.ID = 7
	tok, err := util.GenerateJWT(user, secret, ttl)
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	r := protectedRouter()

	cases := []struct {
		name   string
		build  func() *http.Request
		status int
	}{
		{"missing token", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/me", nil)
		}, http.StatusUnauthorized},
		{"bearer header", func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", "Bearer "+token(t, testSecret, time.Hour))
			return req
		}, http.StatusOK},
		{"query token", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/me?token="+token(t, testSecret, time.Hour), nil)
		}, http.StatusOK},
		{"wrong secret", func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", "Bearer "+token(t, "another-secret-0123456789abcdefghij", time.Hour))
			return req
		}, http.StatusUnauthorized},
		{"expired", func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", "Bearer "+token(t, testSecret, -time.Minute))
			return req
		}, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, tc.build())
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d: %s", w.Code, tc.status, w.Body.String())
			}
		})
	}
}

type activityRecorder chan uint

func (a activityRecorder) UpdateLastSeen(id uint) error {
	a <- id
	return nil
}

func TestActivityMiddlewareTouchesUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	seen := make(activityRecorder, 1)
	r := gin.New()
	r.GET("/ping", AuthMiddleware(testSecret), ActivityMiddleware(seen), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, testSecret, time.Hour))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	select {
	case id := <-seen:
		if id != 7 {
			t.Fatalf("touched user %d", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("last seen was never updated")
	}
}
