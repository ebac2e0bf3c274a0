package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pixelpress/server/internal/auth"
	"codeberg.org/pixelpress/server/internal/credits"
	"codeberg.org/pixelpress/server/internal/imagegen"
	"codeberg.org/pixelpress/server/internal/notifications"
)

const testAccount = "acct-generate"

type stubGenerator struct {
	image string
	err   error
	calls int
}

func (g *stubGenerator) Generate(context.Context, imagegen.TemplateType, map[string]string) (string, error) {
	g.calls++
	return g.image, g.err
}

type fixture struct {
	router    *gin.Engine
	generator *stubGenerator
	ledger    *credits.MemoryLedger
	log       *notifications.MemoryLog
	token     string
}

func newFixture(t *testing.T, gen *stubGenerator) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := auth.NewVerifier("generate-secret")
	require.NoError(t, err)

	token, err := verifier.Generate(testAccount, "a@example.com", false, time.Hour)
	require.NoError(t, err)

	f := &fixture{
		router:    gin.New(),
		generator: gen,
		ledger:    credits.NewMemoryLedger(),
		log:       notifications.NewMemoryLog(),
		token:     token,
	}

	RegisterRoutes(f.router.Group("/api/v1"), gen, f.ledger, f.log, verifier, func(c *gin.Context) { c.Next() })
	return f
}

func (f *fixture) post(t *testing.T, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.token)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHandler_Success(t *testing.T) {
	f := newFixture(t, &stubGenerator{image: "QUJD"})
	f.ledger.SetBalance(testAccount, 7)

	w := f.post(t, Request{
		TemplateType: "blog",
		Fields:       map[string]string{"title": "Hello", "content": "World"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "QUJD", resp.Image)
	assert.Equal(t, imagegen.BlogCost, resp.Cost)
	assert.NotEmpty(t, resp.NotificationID)

	balance, err := f.ledger.Balance(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, 2, balance)

	notifs, err := f.log.List(context.Background(), testAccount, 10, false)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, notifications.KindSuccess, notifs[0].Kind)
}

func TestHandler_MissingFields(t *testing.T) {
	f := newFixture(t, &stubGenerator{image: "QUJD"})
	f.ledger.SetBalance(testAccount, 100)

	w := f.post(t, Request{TemplateType: "blog", Fields: map[string]string{"title": "no body"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "content")
	assert.Zero(t, f.generator.calls)
}

func TestHandler_InsufficientCredits(t *testing.T) {
	f := newFixture(t, &stubGenerator{image: "QUJD"})
	f.ledger.SetBalance(testAccount, 9)

	w := f.post(t, Request{TemplateType: "infographic", Fields: map[string]string{"content": "facts"}})

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Zero(t, f.generator.calls)
	assert.Empty(t, f.ledger.Debits())
}

func TestHandler_GeneratorFailure(t *testing.T) {
	f := newFixture(t, &stubGenerator{err: imagegen.ErrNoImageData})
	f.ledger.SetBalance(testAccount, 10)

	w := f.post(t, Request{TemplateType: "infographic", Fields: map[string]string{"content": "facts"}})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "no image data received")

	// the debit is not refunded
	balance, err := f.ledger.Balance(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)

	notifs, err := f.log.List(context.Background(), testAccount, 10, false)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, notifications.KindError, notifs[0].Kind)
}

func TestHandler_DebitError(t *testing.T) {
	f := newFixture(t, &stubGenerator{image: "QUJD"})
	f.ledger.SetBalance(testAccount, 10)
	f.ledger.FailNextDebit(errors.New("connection reset"))

	w := f.post(t, Request{TemplateType: "blog", Fields: map[string]string{"title": "t", "content": "c"}})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Zero(t, f.generator.calls)
}
