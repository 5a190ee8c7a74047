package ws

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/your-org/photoflow/internal/observability"
)

func gauge() float64 {
	return testutil.ToFloat64(observability.WSConnections)
}

func waitForGauge(t *testing.T, want float64) {
	t.Helper()
	require.Eventually(t, func() bool {
		return gauge() == want
	}, time.Second, 5*time.Millisecond)
}

func TestHubEvictsSlowClient(t *testing.T) {
	h := NewHub()
	go h.Run()

	baseline := gauge()

	// Unbuffered send channel with no reader: the first broadcast cannot
	// be delivered and must evict the client.
	slow := &Client{send: make(chan []byte)}
	h.register <- slow
	waitForGauge(t, baseline+1)

	h.broadcast <- []byte(`{"type":"image_processed"}`)
	waitForGauge(t, baseline)

	// The dead read loop unregisters the evicted client afterwards; that
	// must not decrement the gauge a second time.
	h.unregister <- slow
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, baseline, gauge())

	_, open := <-slow.send
	require.False(t, open)
}

func TestHubRegisterUnregister(t *testing.T) {
	h := NewHub()
	go h.Run()

	baseline := gauge()

	c := &Client{send: make(chan []byte, 1)}
	h.register <- c
	waitForGauge(t, baseline+1)

	h.unregister <- c
	waitForGauge(t, baseline)

	_, open := <-c.send
	require.False(t, open)
}
