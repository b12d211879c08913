package heartbeat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fenwick-systems/mid70lidar/internal/wire"
)

// TestP7Cadence is property P7: the supervisor submits roughly once per
// period, not faster and not stalled.
func TestP7Cadence(t *testing.T) {
	var mu sync.Mutex
	var ticks []time.Time

	sup := New(func(ctx context.Context, req wire.RequestBody) (wire.ResponseBody, error) {
		mu.Lock()
		ticks = append(ticks, time.Now())
		mu.Unlock()
		return &wire.HeartbeatResponse{RetCode: 0}, nil
	}, 30*time.Millisecond)

	time.Sleep(130 * time.Millisecond)
	sup.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(ticks), 3)
	for i := 1; i < len(ticks); i++ {
		gap := ticks[i].Sub(ticks[i-1])
		require.Greater(t, gap, 15*time.Millisecond)
	}
}

// TestP8CleanShutdown is property P8: Stop returns only once the run
// goroutine has actually exited, and no further submissions occur after.
func TestP8CleanShutdown(t *testing.T) {
	var mu sync.Mutex
	count := 0

	sup := New(func(ctx context.Context, req wire.RequestBody) (wire.ResponseBody, error) {
		mu.Lock()
		count++
		mu.Unlock()
		return &wire.HeartbeatResponse{RetCode: 0}, nil
	}, 10*time.Millisecond)

	time.Sleep(55 * time.Millisecond)
	sup.Stop()

	mu.Lock()
	afterStop := count
	mu.Unlock()

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, afterStop, count, "no heartbeats should fire after Stop returns")
}

func TestFailedHeartbeatDoesNotStopSupervisor(t *testing.T) {
	var mu sync.Mutex
	count := 0

	sup := New(func(ctx context.Context, req wire.RequestBody) (wire.ResponseBody, error) {
		mu.Lock()
		count++
		mu.Unlock()
		return nil, errors.New("simulated write failure")
	}, 10*time.Millisecond)

	time.Sleep(55 * time.Millisecond)
	sup.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, count, 3)
}

// TestHeartbeatRejectedRetCodeDoesNotStopSupervisor covers spec's "on
// response Heartbeat{ret_code=0,...} log info; otherwise log error": a
// non-zero ret_code is a rejected-but-understood heartbeat, not a
// transport failure, and must not stop the ticker either.
func TestHeartbeatRejectedRetCodeDoesNotStopSupervisor(t *testing.T) {
	var mu sync.Mutex
	count := 0

	sup := New(func(ctx context.Context, req wire.RequestBody) (wire.ResponseBody, error) {
		mu.Lock()
		count++
		mu.Unlock()
		return &wire.HeartbeatResponse{RetCode: 1}, nil
	}, 10*time.Millisecond)

	time.Sleep(55 * time.Millisecond)
	sup.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, count, 3)
}
