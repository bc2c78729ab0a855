package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/assessment-tests/internal/rbac"
)

func TestAuthService_IssueAndParse(t *testing.T) {
	a := NewAuthService("secret", time.Hour)
	tok, err := a.IssueJWT("u1", "student")
	require.NoError(t, err)

	c, err := a.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.Subject)
	assert.Equal(t, "student", c.Role)

	_, err = NewAuthService("other", time.Hour).Parse(tok)
	assert.Error(t, err)
}

func TestAuthService_Expired(t *testing.T) {
	a := NewAuthService("secret", time.Minute)
	a.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := a.IssueJWT("u1", "student")
	require.NoError(t, err)

	_, err = a.Parse(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTMiddleware(t *testing.T) {
	a := NewAuthService("secret", time.Hour)
	var gotUser, gotRole string
	h := JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotRole = rbac.RoleFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := a.IssueJWT("u42", "teacher")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u42", gotUser)
	assert.Equal(t, "teacher", gotRole)
}

func TestLoginHandler(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	a := NewAuthService("secret", time.Hour)
	opts := LoginOptions{AdminUser: "admin", AdminPassHash: string(hash), AllowDevUsers: true}

	tests := []struct {
		name string
		body string
		code int
		role string
	}{
		{name: "admin", body: `{"username":"admin","password":"s3cret"}`, code: http.StatusOK, role: "admin"},
		{name: "admin wrong password", body: `{"username":"admin","password":"admin"}`, code: http.StatusUnauthorized},
		{name: "dev student", body: `{"username":"amy","password":"amy","role":"student"}`, code: http.StatusOK, role: "student"},
		{name: "dev cannot be admin", body: `{"username":"amy","password":"amy","role":"admin"}`, code: http.StatusUnauthorized},
		{name: "dev mismatch", body: `{"username":"amy","password":"x","role":"student"}`, code: http.StatusUnauthorized},
		{name: "bad json", body: `{`, code: http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			LoginHandler(a, opts)(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tc.body)))
			assert.Equal(t, tc.code, rec.Code)
			if tc.role != "" {
				assert.Contains(t, rec.Body.String(), `"role":"`+tc.role+`"`)
				assert.Contains(t, rec.Body.String(), "access_token")
			}
		})
	}

	rec := httptest.NewRecorder()
	LoginHandler(a, LoginOptions{AdminUser: "admin", AdminPassHash: string(hash)})(rec,
		httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"amy","password":"amy","role":"student"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "dev users disabled")
}
