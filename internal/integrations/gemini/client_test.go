package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cg-sahayak/internal/domain"
)

// fakeGetter is a minimal paramstore stub for use within this package.
type fakeGetter struct {
	val string
	err error
}

func (f *fakeGetter) Secret(_ context.Context, _ string) (string, error) {
	return f.val, f.err
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(
		context.Background(),
		&fakeGetter{val: "test-key"},
		"/cg-sahayak",
		WithBaseURL(srv.URL),
		WithHTTPClient(&http.Client{Timeout: 2 * time.Second}),
	)
	require.NoError(t, err)
	return c
}

func mediumParams() domain.GenerationParams {
	return domain.LengthMedium.GenerationParams()
}

// ---------------------------------------------------------------------------
// generateURL helper
// ---------------------------------------------------------------------------

func TestGenerateURL(t *testing.T) {
	cases := []struct {
		base  string
		model string
		want  string
	}{
		{"https://generativelanguage.googleapis.com", "gemini-1.5-flash", "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"},
		{"https://generativelanguage.googleapis.com/", "gemini-1.5-flash", "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"},
		{"http://localhost:8080", "gemini-1.5-flash", "http://localhost:8080/v1beta/models/gemini-1.5-flash:generateContent"},
		{"", "", "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, generateURL(tc.base, tc.model), "base=%q model=%q", tc.base, tc.model)
	}
}

// ---------------------------------------------------------------------------
// NewClient
// ---------------------------------------------------------------------------

func TestNewClient_NilGetter(t *testing.T) {
	_, err := NewClient(context.Background(), nil, "/cg-sahayak")
	require.Error(t, err)
	require.Contains(t, err.Error(), "nil")
}

func TestNewClient_EmptyPrefix(t *testing.T) {
	_, err := NewClient(context.Background(), &fakeGetter{val: "k"}, "  ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "prefix")
}

func TestNewClient_MissingKeyFailsFast(t *testing.T) {
	_, err := NewClient(context.Background(), &fakeGetter{err: errors.New("ParameterNotFound")}, "/cg-sahayak")
	require.Error(t, err)
	require.Contains(t, err.Error(), "resolve api key")
}

// ---------------------------------------------------------------------------
// Client.Generate
// ---------------------------------------------------------------------------

func TestGenerate_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		reqBody, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req generateRequest
		require.NoError(t, json.Unmarshal(reqBody, &req))
		require.Len(t, req.Contents, 1)
		require.Equal(t, "का हाल हे?", req.Contents[0].Parts[0].Text)
		require.Equal(t, 0.8, req.GenerationConfig.Temperature)
		require.Equal(t, 40, req.GenerationConfig.TopK)
		require.Equal(t, 0.95, req.GenerationConfig.TopP)
		require.Equal(t, 300, req.GenerationConfig.MaxOutputTokens)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"बने हे जी।"}]}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	text, err := c.Generate(context.Background(), "का हाल हे?", mediumParams())
	require.NoError(t, err)
	require.Equal(t, "बने हे जी।", text)
}

func TestGenerate_JoinsMultipleParts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"पहला "},{"text":"दूसरा"}]}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	text, err := c.Generate(context.Background(), "q", mediumParams())
	require.NoError(t, err)
	require.Equal(t, "पहला दूसरा", text)
}

func TestGenerate_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(400)
		_, _ = w.Write([]byte(`{"error":"bad request"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Generate(context.Background(), "q", mediumParams())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected status")
	require.Contains(t, err.Error(), "400")

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 400, statusErr.HTTPStatusCode())
}

func TestGenerate_429(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(429)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Generate(context.Background(), "q", mediumParams())
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
}

func TestGenerate_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`not-a-json`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Generate(context.Background(), "q", mediumParams())
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode response")
}

func TestGenerate_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Generate(context.Background(), "q", mediumParams())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no candidates")
}

func TestGenerate_EmptyCandidateText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"   "}]}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Generate(context.Background(), "q", mediumParams())
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty candidate")
}

func TestGenerate_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}
	_, err := c.Generate(context.Background(), "q", mediumParams())
	require.Error(t, err)
}
