package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Relay(t *testing.T) {
	m := New()

	m.RoomsChanged(3)
	m.Broadcasted(2, 1)
	m.Broadcasted(4, 0)
	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed()

	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeRooms))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.broadcasts))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.deliveries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.drops))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeConnections))
}

func TestMetrics_HTTP(t *testing.T) {
	m := New()

	m.ObserveRequest(http.MethodGet, "/chatrooms/{id}", http.StatusOK, 15*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/chatrooms/{id}", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues(http.MethodGet, "/chatrooms/{id}", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.RoomsChanged(1)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "chatroom_relay_active_rooms 1")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
