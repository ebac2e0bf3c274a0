package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 60 * time.Second

	// cap on the error body echoed back from a failing webhook
	maxErrorBody = 512
)

var (
	// wraps every failure of a generation call
	ErrGenerationFailed = errors.New("image generation failed")

	// the webhook answered without an image field
	ErrNoImageData = errors.New("no image data received")
)

// body posted to the webhook
type Request struct {
	ImageType   string `json:"image_type"`
	ImageDetail string `json:"image_detail"`
}

type response struct {
	Image string `json:"image"`
}

// produces one base64 image for one request
type Generator interface {
	Generate(ctx context.Context, t TemplateType, fields map[string]string) (string, error)
}

type Config struct {
	URL     string
	Secret  string        // sent as X-Webhook-Secret when set
	Timeout time.Duration // per call
	Limiter *rate.Limiter // process-wide throttle, nil disables it
}

// calls the external image webhook
type Client struct {
	config     Config
	httpClient *http.Client
}

func NewClient(config Config) *Client {
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

// returns a limiter allowing perMinute calls with a small burst
func NewLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}

	burst := perMinute / 10
	if burst < 1 {
		burst = 1
	}

	return rate.NewLimiter(rate.Limit(float64(perMinute)/60), burst)
}

// sends one generation request and returns the base64 image
func (c *Client) Generate(ctx context.Context, t TemplateType, fields map[string]string) (string, error) {
	start := time.Now()

	image, err := c.generate(ctx, NewRequest(t, fields))

	webhookDuration.WithLabelValues(string(t)).Observe(time.Since(start).Seconds())

	if err != nil {
		webhookRequestsTotal.WithLabelValues(string(t), "failed").Inc()
		return "", err
	}

	webhookRequestsTotal.WithLabelValues(string(t), "completed").Inc()
	return image, nil
}

func (c *Client) generate(ctx context.Context, reqBody Request) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request: %w", ErrGenerationFailed, err)
	}

	if c.config.Limiter != nil {
		if err := c.config.Limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: rate limiter error: %w", ErrGenerationFailed, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %w", ErrGenerationFailed, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.config.Secret != "" {
		req.Header.Set("X-Webhook-Secret", c.config.Secret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to send request: %w", ErrGenerationFailed, err)
	}

	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)) //nolint:errcheck
		return "", &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Body: strings.TrimSpace(string(body))}
	}

	var genResp response
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %w", ErrGenerationFailed, err)
	}

	image := strings.TrimSpace(genResp.Image)
	if image == "" {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, ErrNoImageData)
	}

	if _, err := base64.StdEncoding.DecodeString(image); err != nil {
		return "", fmt.Errorf("%w: malformed image data: %w", ErrGenerationFailed, err)
	}

	return image, nil
}

// a non-2xx answer from the webhook
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}

	return "webhook request failed: " + status
}

func (e *HTTPError) Unwrap() error {
	return ErrGenerationFailed
}

// turns a generation error into the message stored on a failed item
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, ErrNoImageData) {
		return ErrNoImageData.Error()
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Error()
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "image generation timed out"
	}

	msg := strings.TrimPrefix(err.Error(), ErrGenerationFailed.Error()+": ")
	if msg == "" {
		return "image generation failed"
	}

	return msg
}
