package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing"

func newVerifier(t *testing.T) *Verifier {
	t.Helper()

	v, err := NewVerifier(testSecret)
	require.NoError(t, err)

	return v
}

func TestNewVerifier_MissingSecret(t *testing.T) {
	_, err := NewVerifier("")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestGenerate_Success(t *testing.T) {
	token, err := newVerifier(t).Generate("user-123", "test@example.com", false, time.Hour)

	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(token, ".")), "JWT should have 3 parts")
}

func TestValidate_ValidToken(t *testing.T) {
	v := newVerifier(t)

	token, err := v.Generate("user-123", "test@example.com", true, time.Hour)
	require.NoError(t, err)

	claims, err := v.Validate(token)

	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID())
	assert.Equal(t, "test@example.com", claims.Email)
	assert.True(t, claims.IsAdmin())
}

func TestValidate_ExpiredToken(t *testing.T) {
	token, err := newVerifier(t).Generate("user-123", "test@example.com", false, -time.Hour)
	require.NoError(t, err)

	_, err = newVerifier(t).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired token should be rejected")
}

func TestValidate_MissingExpiry(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"}}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = newVerifier(t).Validate(token)
	assert.Error(t, err, "token without exp should be rejected")
}

func TestValidate_MissingSubject(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = newVerifier(t).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_TamperedToken(t *testing.T) {
	v := newVerifier(t)

	token, err := v.Generate("user-123", "test@example.com", false, time.Hour)
	require.NoError(t, err)

	_, err = v.Validate(token[:len(token)-5] + "XXXXX")
	assert.Error(t, err, "tampered token should be rejected")
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := newVerifier(t).Generate("user-123", "test@example.com", false, time.Hour)
	require.NoError(t, err)

	other, err := NewVerifier("different-secret-key")
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err, "token signed with different secret should be rejected")
}

func TestValidate_AlgorithmConfusionAttack(t *testing.T) {
	claims := Claims{
		Email: "attacker@evil.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "attacker",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	tokenString, _ := token.SignedString(jwt.UnsafeAllowNoneSignatureType) //nolint:errcheck // test code

	_, err := newVerifier(t).Validate(tokenString)
	assert.Error(t, err, "token with 'none' algorithm should be rejected")
}

func TestValidate_MalformedToken(t *testing.T) {
	malformedTokens := []string{
		"",
		"not.a.jwt",
		"only.two",
		"too.many.parts.in.this.token",
		"<script>alert('xss')</script>",
	}

	v := newVerifier(t)
	for _, token := range malformedTokens {
		_, err := v.Validate(token)
		assert.Error(t, err, "malformed token '%s' should be rejected", token)
	}
}

func newRouter(v *Verifier) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/me", AuthMiddleware(v), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.String(http.StatusOK, userID)
	})
	r.GET("/admin", AuthMiddleware(v), AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/ws", QueryTokenMiddleware(v), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.String(http.StatusOK, userID)
	})

	return r
}

func TestAuthMiddleware(t *testing.T) {
	v := newVerifier(t)
	r := newRouter(v)

	token, err := v.Generate("user-123", "test@example.com", false, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + token, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "user-123", w.Body.String())
			}
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	v := newVerifier(t)
	r := newRouter(v)

	userToken, err := v.Generate("user-1", "u@example.com", false, time.Hour)
	require.NoError(t, err)
	adminToken, err := v.Generate("admin-1", "a@example.com", true, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestQueryTokenMiddleware(t *testing.T) {
	v := newVerifier(t)
	r := newRouter(v)

	token, err := v.Generate("user-9", "u@example.com", false, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-9", w.Body.String())
}
