package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGet(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/stations.json", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := New(Options{BaseURL: server.URL, Timeout: 2 * time.Second})

	resp, err := c.Get(context.Background(), "/stations.json")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
}

func TestClientGetWithoutBaseURL(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := New(Options{})

	resp, err := c.Get(context.Background(), server.URL+"/anything")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestClientPostJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "img-123", payload["imageRef"])

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"detected":true}`))
	}))
	defer server.Close()

	c := New(Options{BaseURL: server.URL})

	resp, err := c.PostJSON(context.Background(), "/recognize", []byte(`{"imageRef":"img-123"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClientHooks(t *testing.T) {
	t.Parallel()

	c := New(Options{BaseURL: "http://unused"})
	c.GetFunc = func(_ context.Context, path string) (*Response, error) {
		return &Response{StatusCode: http.StatusTeapot, Body: []byte(path)}, nil
	}
	c.PostFunc = func(_ context.Context, path string, body []byte) (*Response, error) {
		return &Response{StatusCode: http.StatusAccepted, Body: body}, nil
	}

	resp, err := c.Get(context.Background(), "/hooked")
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "/hooked", string(resp.Body))

	resp, err = c.PostJSON(context.Background(), "/hooked", []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "payload", string(resp.Body))
}

func TestClientContextCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New(Options{BaseURL: server.URL})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Get(ctx, "/slow")
	assert.Error(t, err)
}
