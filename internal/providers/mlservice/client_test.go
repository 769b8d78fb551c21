package mlservice

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWith(srv.URL, timeout, nil)
}

func kindOf(t *testing.T, err error) ErrorKind {
	t.Helper()
	var me *Error
	require.True(t, errors.As(err, &me), "expected *mlservice.Error, got %v", err)
	return me.Kind
}

func TestMatchSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, matchPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"score": 72.4, "matchedSkills": ["go"], "missingSkills": [], "analysis": "ok"}`))
	}, time.Second)

	res, err := c.Match(context.Background(), MatchRequest{
		ResumeText:      "resume",
		JobDescription:  "job",
		RequiredSkills:  []string{"go"},
		CandidateSkills: []string{"go"},
	})
	require.NoError(t, err)
	assert.Equal(t, 72.4, res.Score)
	assert.Equal(t, []string{"go"}, res.MatchedSkills)
}

func TestMatchNon2xx(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}, time.Second)

	_, err := c.Match(context.Background(), MatchRequest{})
	assert.Equal(t, KindServiceUnavailable, kindOf(t, err))
}

func TestMatchMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"score": "not a number"`))
	}, time.Second)

	_, err := c.Match(context.Background(), MatchRequest{})
	assert.Equal(t, KindInvalidResponse, kindOf(t, err))
}

func TestMatchScoreOutOfRange(t *testing.T) {
	for _, body := range []string{`{"score": 150}`, `{"score": -3}`} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}, time.Second)

		_, err := c.Match(context.Background(), MatchRequest{})
		assert.Equal(t, KindInvalidResponse, kindOf(t, err))
	}
}

func TestMatchTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}, 20*time.Millisecond)

	_, err := c.Match(context.Background(), MatchRequest{})
	assert.Equal(t, KindTimeout, kindOf(t, err))
}

func TestMatchConnectionRefused(t *testing.T) {
	c := NewClientWith("http://127.0.0.1:1", time.Second, nil)

	_, err := c.Match(context.Background(), MatchRequest{})
	var me *Error
	require.True(t, errors.As(err, &me))
	assert.Contains(t, []ErrorKind{KindServiceUnavailable, KindTimeout}, me.Kind)
}

func TestParseResume(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, parsePath, r.URL.Path)
		w.Write([]byte(`{"skills": ["Go", "Docker"], "experience": 4, "email": "a@b.c"}`))
	}, time.Second)

	parsed, err := c.ParseResume(context.Background(), "some resume text")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Docker"}, parsed.Skills)
	assert.Equal(t, 4, parsed.Experience)
	assert.Equal(t, "a@b.c", parsed.Email)
}
