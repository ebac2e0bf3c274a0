package imagegen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWebhook(t *testing.T, handler func(w http.ResponseWriter, req Request)) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		handler(w, req)
	}))

	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Generate_Success(t *testing.T) {
	var got Request
	var secret string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret = r.Header.Get("X-Webhook-Secret")
		_ = json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck // test server

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"image":"QUJD"}`)) //nolint:errcheck // test server
	}))
	defer srv.Close()

	client := NewClient(Config{URL: srv.URL, Secret: "s3cret"})

	image, err := client.Generate(context.Background(), TemplateBlog, map[string]string{
		FieldTitle:   "Hello",
		FieldContent: "World",
	})

	require.NoError(t, err)
	assert.Equal(t, "QUJD", image)
	assert.Equal(t, "s3cret", secret)
	assert.Equal(t, "Featured Image", got.ImageType)
	assert.Equal(t, "Blog post title: 'Hello', Content: World", got.ImageDetail)
}

func TestClient_Generate_HTTPError(t *testing.T) {
	srv := newWebhook(t, func(w http.ResponseWriter, _ Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	client := NewClient(Config{URL: srv.URL})
	_, err := client.Generate(context.Background(), TemplateInfographic, map[string]string{FieldContent: "x"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGenerationFailed))

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Equal(t, "boom", httpErr.Body)
	assert.Equal(t, "webhook request failed: 500 Internal Server Error", FailureMessage(err))
}

func TestClient_Generate_MissingImage(t *testing.T) {
	srv := newWebhook(t, func(w http.ResponseWriter, _ Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck // test server
	})

	client := NewClient(Config{URL: srv.URL})
	_, err := client.Generate(context.Background(), TemplateInfographic, map[string]string{FieldContent: "x"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoImageData))
	assert.Equal(t, "no image data received", FailureMessage(err))
}

func TestClient_Generate_MalformedImage(t *testing.T) {
	srv := newWebhook(t, func(w http.ResponseWriter, _ Request) {
		_, _ = w.Write([]byte(`{"image":"not base64!!"}`)) //nolint:errcheck // test server
	})

	client := NewClient(Config{URL: srv.URL})
	_, err := client.Generate(context.Background(), TemplateInfographic, map[string]string{FieldContent: "x"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGenerationFailed))
	assert.Contains(t, FailureMessage(err), "malformed image data")
}

func TestClient_Generate_InvalidJSON(t *testing.T) {
	srv := newWebhook(t, func(w http.ResponseWriter, _ Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`)) //nolint:errcheck // test server
	})

	client := NewClient(Config{URL: srv.URL})
	_, err := client.Generate(context.Background(), TemplateInfographic, map[string]string{FieldContent: "x"})

	require.Error(t, err)
	assert.Contains(t, FailureMessage(err), "failed to decode response")
}

func TestClient_Generate_Timeout(t *testing.T) {
	srv := newWebhook(t, func(w http.ResponseWriter, _ Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"image":"QUJD"}`)) //nolint:errcheck // test server
	})

	client := NewClient(Config{URL: srv.URL, Timeout: 20 * time.Millisecond})
	_, err := client.Generate(context.Background(), TemplateInfographic, map[string]string{FieldContent: "x"})

	require.Error(t, err)
	assert.Equal(t, "image generation timed out", FailureMessage(err))
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(0))

	limiter := NewLimiter(30)
	require.NotNil(t, limiter)
	assert.Equal(t, 3, limiter.Burst())
	assert.InDelta(t, 0.5, float64(limiter.Limit()), 0.0001)
}
