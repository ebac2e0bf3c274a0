package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category string
	}{
		{name: "no rows", err: fmt.Errorf("lookup: %w", pgx.ErrNoRows), category: CategoryNotFound},
		{name: "redis miss", err: redis.Nil, category: CategoryNotFound},
		{name: "deadline", err: context.DeadlineExceeded, category: CategoryTimeout},
		{name: "dial", err: fmt.Errorf("dial tcp: connection refused"), category: CategoryNetwork},
		{name: "validation", err: fmt.Errorf("field title is required"), category: CategoryValidation},
		{name: "unknown", err: fmt.Errorf("something odd"), category: CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, classifyError(tt.err).category)
		})
	}
}

func TestSanitizeInProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	assert.Equal(t, "request timed out", sanitizeError(context.DeadlineExceeded))
	assert.Equal(t, "connection error occurred", SanitizeDetails("dial tcp 10.0.0.3:5432: connection refused"))
	assert.Empty(t, SanitizeDetails(""))
}

func TestSanitizeOutsideProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	assert.Equal(t, "dial tcp: connection refused", sanitizeError(fmt.Errorf("dial tcp: connection refused")))
}

func TestPaymentRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	PaymentRequired(c, "batch needs 10 credits")

	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, CodeInsufficientCredits, body.Error)
	assert.Equal(t, "batch needs 10 credits", body.Message)
}

func TestConflictDefaultsCode(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Conflict(c, "", "")

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, CodeConflict, body.Error)
	assert.Equal(t, "resource conflict", body.Message)
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("6F9619FF-8B86-D011-B42D-00C04FC964FF"))
	assert.False(t, IsValidUUID("not-a-uuid"))
	assert.False(t, IsValidUUID(""))
}
