package power

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

func TestClientSignals(t *testing.T) {
	var got signalRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/power", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)

	assert.NoError(t, client.PowerOn(context.Background(), "row-3/station-7"))
	assert.Equal(t, signalRequest{Location: "row-3/station-7", Action: "on"}, got)

	assert.NoError(t, client.PowerOff(context.Background(), "row-3/station-7"))
	assert.Equal(t, "off", got.Action)
}

func TestClientNon200IsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)
	assert.Error(t, client.PowerOn(context.Background(), "row-1/station-1"))
}

func TestClientRespectsContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.Error(t, client.PowerOn(ctx, "row-1/station-1"))
}
