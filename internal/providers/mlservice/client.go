package mlservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "http://localhost:8000"
	defaultTimeout = 30 * time.Second

	matchPath = "/api/match"
	parsePath = "/api/parse-resume"
)

type Client struct {
	baseURL string
	http    *http.Client
	log     *logrus.Logger
}

var _ Matcher = (*Client)(nil)
var _ Parser = (*Client)(nil)

// NewClient builds a client from ML_SERVICE_URL / ML_SERVICE_TIMEOUT, falling
// back to localhost and a 30s per-call timeout.
func NewClient(log *logrus.Logger) *Client {
	base := os.Getenv("ML_SERVICE_URL")
	if base == "" {
		base = defaultBaseURL
	}

	timeout := defaultTimeout
	if raw := os.Getenv("ML_SERVICE_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			timeout = d
		}
	}

	return NewClientWith(base, timeout, log)
}

func NewClientWith(baseURL string, timeout time.Duration, log *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = logrus.New()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Match runs a single synchronous scoring request. Scores outside [0,100] are
// rejected as invalid rather than clamped, so a misbehaving service degrades
// to fallback scoring instead of polluting stored records.
func (c *Client) Match(ctx context.Context, req MatchRequest) (*MatchResult, error) {
	const op = "match"

	var result MatchResult
	if err := c.post(ctx, op, matchPath, req, &result); err != nil {
		return nil, err
	}

	if result.Score < 0 || result.Score > 100 {
		return nil, &Error{Kind: KindInvalidResponse, Op: op,
			Err: fmt.Errorf("score %v out of range", result.Score)}
	}
	return &result, nil
}

func (c *Client) ParseResume(ctx context.Context, text string) (*ParsedResume, error) {
	const op = "parse-resume"

	var parsed ParsedResume
	if err := c.post(ctx, op, parsePath, map[string]string{"text": text}, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (c *Client) post(ctx context.Context, op, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &Error{Kind: KindInvalidResponse, Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &Error{Kind: KindServiceUnavailable, Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		kind := KindServiceUnavailable
		if isTimeout(err) {
			kind = KindTimeout
		}
		c.log.WithFields(logrus.Fields{
			"op":         op,
			"elapsed_ms": time.Since(start).Milliseconds(),
			"kind":       kind,
		}).WithError(err).Warn("ml service request failed")
		return &Error{Kind: kind, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return &Error{Kind: KindServiceUnavailable, Op: op,
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindInvalidResponse, Op: op, Err: err}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}
