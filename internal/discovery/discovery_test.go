package discovery

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fenwick-systems/mid70lidar/internal/frame"
	"github.com/fenwick-systems/mid70lidar/internal/wire"
)

func loopbackUDP(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// TestS1WaitForOneDecodesBroadcast is scenario S1.
func TestS1WaitForOneDecodesBroadcast(t *testing.T) {
	listener := loopbackUDP(t)

	sender, err := net.DialUDP("udp", nil, listener.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	defer sender.Close()

	want := &wire.BroadcastMessage{
		BroadcastCode: [16]byte{'4', '2', '0', '2', '5', '2', '1', '0', '0', '0', '0', '0', '0', '0', '0', 0},
		DevType:       6,
	}
	data, err := frame.Serialize(frame.NewMessageFrame(0, want))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result := make(chan *Device, 1)
	errs := make(chan error, 1)
	go func() {
		dev, err := waitForOneOn(ctx, listener)
		if err != nil {
			errs <- err
			return
		}
		result <- dev
	}()

	_, err = sender.Write(data)
	require.NoError(t, err)

	select {
	case dev := <-result:
		require.Equal(t, want.BroadcastCode, dev.BroadcastCode)
		require.Equal(t, wire.DeviceTypeMid70, dev.DevType)
	case err := <-errs:
		t.Fatalf("waitForOneOn failed: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for discovery result")
	}
}

// TestWaitForOneFailsFastOnNonBroadcastDatagram confirms there is no
// retry policy at this level: the first non-matching datagram fails the
// call immediately rather than waiting for another datagram or for ctx
// to expire.
func TestWaitForOneFailsFastOnNonBroadcastDatagram(t *testing.T) {
	listener := loopbackUDP(t)
	sender, err := net.DialUDP("udp", nil, listener.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	defer sender.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := waitForOneOn(ctx, listener)
		done <- err
	}()

	// A Heartbeat request is well-formed but not a broadcast; it must
	// fail the call outright, not be skipped in favor of a later
	// datagram.
	data, err := frame.Serialize(frame.NewRequestFrame(1, &wire.HeartbeatRequest{}))
	require.NoError(t, err)
	_, err = sender.Write(data)
	require.NoError(t, err)

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrNoneBroadcastReceived)
	case <-time.After(1 * time.Second):
		t.Fatal("waitForOneOn did not fail fast on a non-matching datagram")
	}
}

func TestWaitForOneRespectsCancellation(t *testing.T) {
	listener := loopbackUDP(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := waitForOneOn(ctx, listener)
	require.ErrorIs(t, err, ErrNoneBroadcastReceived)
}
