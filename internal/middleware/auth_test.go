package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/util"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const secret = "middleware-test-secret"

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f fakeRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	return f.revoked[id], f.err
}

func tokenFor(t *testing.T, id uint, role model.UserRole) (string, *util.Claims) {
	t.Helper()
	u := &model.User{Username: "u", Role: role}
	u.ID = id
	token, err := util.GenerateJWT(u, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	claims, err := util.ParseJWT(token, secret)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	return token, claims
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": util.CurrentUserID(c)})
	})
	r.GET("/", handlers...)
	return r
}

func do(r http.Handler, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	token, _ := tokenFor(t, 3, model.RoleLearner)
	revokedToken, revokedClaims := tokenFor(t, 4, model.RoleLearner)

	r := newRouter(AuthMiddleware(secret, fakeRevocations{revoked: map[string]bool{revokedClaims.ID: true}}))

	if w := do(r, "/", token); w.Code != http.StatusOK {
		t.Fatalf("valid token: status %d", w.Code)
	}
	if w := do(r, "/?token="+token, ""); w.Code != http.StatusOK {
		t.Fatalf("query token: status %d", w.Code)
	}
	if w := do(r, "/", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status %d", w.Code)
	}
	if w := do(r, "/", token+"x"); w.Code != http.StatusUnauthorized {
		t.Fatalf("tampered token: status %d", w.Code)
	}
	if w := do(r, "/", revokedToken); w.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token: status %d", w.Code)
	}
}

func TestAuthMiddlewareRevocationError(t *testing.T) {
	token, _ := tokenFor(t, 3, model.RoleLearner)
	r := newRouter(AuthMiddleware(secret, fakeRevocations{err: errors.New("redis down")}))

	if w := do(r, "/", token); w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", w.Code)
	}
}

func TestTryAuthMiddleware(t *testing.T) {
	token, _ := tokenFor(t, 9, model.RoleLearner)
	r := newRouter(TryAuthMiddleware(secret, nil))

	w := do(r, "/", token)
	if w.Code != http.StatusOK || w.Body.String() != `{"user":9}` {
		t.Fatalf("authenticated: %d %s", w.Code, w.Body.String())
	}

	w = do(r, "/", "garbage")
	if w.Code != http.StatusOK || w.Body.String() != `{"user":0}` {
		t.Fatalf("anonymous: %d %s", w.Code, w.Body.String())
	}
}

func TestRoleMiddleware(t *testing.T) {
	learner, _ := tokenFor(t, 1, model.RoleLearner)
	instructor, _ := tokenFor(t, 2, model.RoleInstructor)
	admin, _ := tokenFor(t, 3, model.RoleAdmin)

	r := newRouter(AuthMiddleware(secret, nil), RoleMiddleware(model.RoleInstructor))

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"learner", learner, http.StatusForbidden},
		{"instructor", instructor, http.StatusOK},
		{"admin", admin, http.StatusOK},
		{"anonymous", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(r, "/", tt.token); w.Code != tt.want {
				t.Fatalf("status %d, want %d", w.Code, tt.want)
			}
		})
	}
}
