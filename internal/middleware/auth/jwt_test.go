package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	claims["iat"] = time.Now().Unix()
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tokenString
}

func testMiddleware() echo.MiddlewareFunc {
	return JWTMiddleware(JWTConfig{
		Secret:    "test-secret",
		Logger:    zap.NewNop(),
		SkipPaths: []string{"/health"},
	})
}

func serve(t *testing.T, path, authHeader string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := testMiddleware()(next)(c)
	assert.NoError(t, err)
	return rec
}

func ok(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func TestJWTMiddleware_EditorName(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   string
	}{
		{
			name: "full name from user metadata",
			claims: jwt.MapClaims{
				"sub":           "user-1",
				"email":         "alex@example.com",
				"user_metadata": map[string]interface{}{"full_name": "Alex Smith"},
			},
			want: "Alex Smith",
		},
		{
			name: "email when full name is blank",
			claims: jwt.MapClaims{
				"sub":           "user-1",
				"email":         "alex@example.com",
				"user_metadata": map[string]interface{}{"full_name": "  "},
			},
			want: "alex@example.com",
		},
		{
			name:   "subject as last resort",
			claims: jwt.MapClaims{"sub": "user-1"},
			want:   "user-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			rec := serve(t, "/api/v1/jobs/J1/writeup", "Bearer "+signToken(t, tt.claims, "test-secret"), func(c echo.Context) error {
				name, err := GetEditorName(c)
				assert.NoError(t, err)
				got = name
				return ok(c)
			})

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJWTMiddleware_MissingAuthorizationHeader(t *testing.T) {
	rec := serve(t, "/api/v1/jobs/J1/writeup", "", ok)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_AUTH_HEADER")
}

func TestJWTMiddleware_InvalidFormat(t *testing.T) {
	rec := serve(t, "/api/v1/jobs/J1/writeup", "Token abc", ok)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_AUTH_FORMAT")
}

func TestJWTMiddleware_WrongSecret(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": "user-1"}, "other-secret")
	rec := serve(t, "/api/v1/jobs/J1/writeup", "Bearer "+token, ok)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_TOKEN")
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	}, "test-secret")
	rec := serve(t, "/api/v1/jobs/J1/writeup", "Bearer "+token, ok)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_TOKEN")
}

func TestJWTMiddleware_MissingSubject(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"email": "alex@example.com"}, "test-secret")
	rec := serve(t, "/api/v1/jobs/J1/writeup", "Bearer "+token, ok)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_SUBJECT")
}

func TestJWTMiddleware_SkipPaths(t *testing.T) {
	rec := serve(t, "/health", "", ok)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetEditorName_NoUser(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	name, err := GetEditorName(c)
	assert.Error(t, err)
	assert.Empty(t, name)

	c.SetRequest(c.Request().WithContext(WithUser(c.Request().Context(), &AuthUser{UserID: "u", DisplayName: "Sam"})))
	name, err = GetEditorName(c)
	assert.NoError(t, err)
	assert.Equal(t, "Sam", name)
}
