package worker

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooklinehq/hookline/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_Configured(t *testing.T) {
	t.Parallel()

	assert.False(t, NewClient("", 0, testLogger()).Configured())
	assert.True(t, NewClient("http://worker.local", 0, testLogger()).Configured())
}

func TestClient_Notify(t *testing.T) {
	t.Parallel()

	var (
		gotAuth        string
		gotContentType string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"queued"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, testLogger())

	response, err := client.Notify(context.Background(), "token-123", []*models.SyncTrigger{
		{ID: "t1", UserID: "u1", Source: "gmail"},
	})
	require.NoError(t, err)

	assert.Equal(t, "queued", response["status"])
	assert.Equal(t, "Bearer token-123", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
}

func TestClient_Notify_TransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, time.Second, testLogger())

	_, err := client.Notify(context.Background(), "token", nil)
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.False(t, IsResponseError(err))
}

func TestClient_Notify_UndecodableResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, testLogger())

	_, err := client.Notify(context.Background(), "token", nil)
	require.Error(t, err)
	require.True(t, IsResponseError(err))

	var responseErr *ResponseError
	require.ErrorAs(t, err, &responseErr)
	assert.Equal(t, http.StatusBadGateway, responseErr.StatusCode)
}

func TestClient_Notify_WorkerErrorBodyDecoded(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"queue full"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, testLogger())

	// Decodable bodies are returned verbatim regardless of status code.
	response, err := client.Notify(context.Background(), "token", nil)
	require.NoError(t, err)
	assert.Equal(t, "queue full", response["error"])
}
