package station

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orion-collector/internal/domain"
)

const testDoc = `<oriondata><meas name="mtTemp1" unit="degreeF">71.3</meas></oriondata>`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func assertTransportError(t *testing.T, err error, wantStatus int) {
	t.Helper()
	var terr *domain.TransportError
	require.True(t, errors.As(err, &terr), "expected a TransportError, got %T", err)
	assert.Equal(t, wantStatus, terr.Status)
	assert.NotEmpty(t, terr.URL)
}

func TestClient_Fetch(t *testing.T) {
	var gotUserAgent, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(testDoc))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/tmp/latestsampledata_u.xml", time.Second, testLogger())
	data, err := c.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, testDoc, string(data))
	assert.Equal(t, "orion-collector/1.0.0", gotUserAgent)
	assert.Equal(t, "/tmp/latestsampledata_u.xml", gotPath)
}

func TestClient_FetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, testLogger())
	_, err := c.Fetch(context.Background())

	require.Error(t, err)
	assertTransportError(t, err, http.StatusNotFound)
}

func TestClient_FetchConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second, testLogger())
	_, err := c.Fetch(context.Background())

	require.Error(t, err)
	assertTransportError(t, err, 0)
}

func TestClient_FetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 20*time.Millisecond, testLogger())
	_, err := c.Fetch(context.Background())

	require.Error(t, err)
	assertTransportError(t, err, 0)
}

func TestClient_FetchChunkedBody(t *testing.T) {
	// no Content-Length advertised; the whole body is read
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		_, _ = w.Write([]byte(testDoc[:20]))
		flusher.Flush()
		_, _ = w.Write([]byte(testDoc[20:]))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, testLogger())
	data, err := c.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, testDoc, string(data))
}

func TestClient_FetchContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, time.Second, testLogger())
	_, err := c.Fetch(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
