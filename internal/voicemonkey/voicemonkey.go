package voicemonkey

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cybre/mrsteam-homekit/internal/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultURL is the public trigger endpoint
	DefaultURL = "https://api.voicemonkey.io/trigger"
	// DefaultTimeout bounds a single trigger request
	DefaultTimeout = 10 * time.Second
)

var (
	triggerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mrsteam_trigger_requests_total",
			Help: "Voice Monkey trigger requests by monkey and result.",
		},
		[]string{"monkey", "result"},
	)
	triggerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mrsteam_trigger_request_duration_seconds",
			Help:    "Voice Monkey trigger request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"monkey"},
	)
)

func init() { prometheus.MustRegister(triggerRequests, triggerDuration) }

// Credentials are the two static tokens Voice Monkey authenticates a trigger with.
type Credentials struct {
	AccessToken string
	SecretToken string
}

// StatusError is returned when the trigger endpoint answers with a non-2xx status.
type StatusError struct {
	Monkey     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("trigger %s: unexpected status %d", e.Monkey, e.StatusCode)
}

// Client calls the Voice Monkey trigger endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithBaseURL points the client at another trigger endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// URL builds the trigger URL for monkey. Voice Monkey documents the query
// in this order, so it is assembled by hand rather than with url.Values.
func (c *Client) URL(creds Credentials, monkey string) string {
	return fmt.Sprintf("%s?access_token=%s&secret_token=%s&monkey=%s",
		c.baseURL,
		url.QueryEscape(creds.AccessToken),
		url.QueryEscape(creds.SecretToken),
		url.QueryEscape(monkey),
	)
}

// Trigger fires the named monkey. The response body is ignored; only the
// status code decides success.
func (c *Client) Trigger(ctx context.Context, creds Credentials, monkey string) (err error) {
	start := time.Now()
	defer func() {
		result := "ok"
		var statusErr *StatusError
		switch {
		case errors.As(err, &statusErr):
			result = strconv.Itoa(statusErr.StatusCode)
		case err != nil:
			result = "error"
		}
		triggerRequests.WithLabelValues(monkey, result).Inc()
		triggerDuration.WithLabelValues(monkey).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(creds, monkey), nil)
	if err != nil {
		return errors.Wrapf(err, "build trigger %s request", monkey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "trigger %s", monkey)
	}
	defer resp.Body.Close()

	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Wrap(&StatusError{Monkey: monkey, StatusCode: resp.StatusCode})
	}

	slog.Debug("trigger sent", slog.String("monkey", monkey), slog.Int("status", resp.StatusCode))

	return nil
}
