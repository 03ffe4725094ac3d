package modeladapter_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/YuchengMaUTK/emoji-rephraser/pkg/modeladapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdapter(srv *httptest.Server, auth modeladapter.Auth) *modeladapter.ModelAdapter {
	a := modeladapter.New(srv.URL, auth, nil)
	return &a
}

func TestPostJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/test", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ping", body["msg"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"reply":"pong"}`))
	}))
	t.Cleanup(srv.Close)

	a := newAdapter(srv, modeladapter.Auth{})

	var dest struct {
		Reply string `json:"reply"`
	}
	err := a.PostJSON(context.Background(), "/v1/test", map[string]string{"msg": "ping"}, &dest)
	require.NoError(t, err)
	assert.Equal(t, "pong", dest.Reply)
}

func TestPostJSON_BearerAuthDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	a := newAdapter(srv, modeladapter.Auth{Key: "secret"})

	require.NoError(t, a.PostJSON(context.Background(), "/", struct{}{}, nil))
}

func TestPostJSON_CustomAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	a := newAdapter(srv, modeladapter.Auth{Key: "secret", Header: "x-api-key"})

	require.NoError(t, a.PostJSON(context.Background(), "/", struct{}{}, nil))
}

func TestPostJSON_CustomHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "v1", r.Header.Get("x-custom"))
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	a := newAdapter(srv, modeladapter.Auth{})
	a.Headers = map[string]string{"x-custom": "v1"}

	require.NoError(t, a.PostJSON(context.Background(), "/", struct{}{}, nil))
}

func TestPostJSON_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	a := newAdapter(srv, modeladapter.Auth{})

	err := a.PostJSON(context.Background(), "/", struct{}{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
	assert.Contains(t, err.Error(), "boom")
}

func TestPostJSON_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	t.Cleanup(srv.Close)

	a := newAdapter(srv, modeladapter.Auth{})

	err := a.PostJSON(context.Background(), "/", struct{}{}, nil)
	require.Error(t, err)

	var rle *modeladapter.RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, 7*time.Second, rle.RetryAfter)
	assert.Contains(t, rle.Body, "slow down")
}

func TestParseRetryAfter_Seconds(t *testing.T) {
	assert.Equal(t, 30*time.Second, modeladapter.ParseRetryAfter("30"))
}

func TestParseRetryAfter_HTTPDate(t *testing.T) {
	future := time.Now().Add(time.Minute).UTC().Format(http.TimeFormat)

	d := modeladapter.ParseRetryAfter(future)
	assert.Greater(t, d, 50*time.Second)
	assert.LessOrEqual(t, d, time.Minute)
}

func TestParseRetryAfter_PastDate(t *testing.T) {
	past := time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat)
	assert.Equal(t, time.Duration(0), modeladapter.ParseRetryAfter(past))
}

func TestParseRetryAfter_Invalid(t *testing.T) {
	assert.Equal(t, time.Duration(0), modeladapter.ParseRetryAfter(""))
	assert.Equal(t, time.Duration(0), modeladapter.ParseRetryAfter("soon"))
}

func TestTracker_AddAndTotal(t *testing.T) {
	var tr modeladapter.Tracker

	tr.Add(modeladapter.TokenCount{InputTokens: 10, OutputTokens: 5})
	tr.Add(modeladapter.TokenCount{InputTokens: 3, OutputTokens: 2})

	total := tr.Total()
	assert.Equal(t, 13, total.InputTokens)
	assert.Equal(t, 7, total.OutputTokens)
	assert.Equal(t, 20, total.Total())
	assert.Equal(t, 2, tr.Count())
}

func TestTracker_Reset(t *testing.T) {
	var tr modeladapter.Tracker

	tr.Add(modeladapter.TokenCount{InputTokens: 1})
	tr.Reset()

	assert.Equal(t, 0, tr.Count())
	assert.Equal(t, modeladapter.TokenCount{}, tr.Total())
}
