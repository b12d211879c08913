// Package discovery listens for the Mid-70's UDP broadcast announcement
// and decodes it into a Device descriptor.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/fenwick-systems/mid70lidar/internal/frame"
	"github.com/fenwick-systems/mid70lidar/internal/wire"
)

// ErrNoneBroadcastReceived reports that WaitForOne's context was cancelled
// before any datagram arrived, or that the first datagram received did not
// parse as a General/BroadcastMessage.
var ErrNoneBroadcastReceived = errors.New("discovery: no broadcast received")

// BroadcastPort is the fixed UDP port the sensor broadcasts its presence
// announcement on.
const BroadcastPort = 55000

// readPollInterval bounds how long a single ReadFromUDP call blocks before
// the listener re-checks ctx, mirroring the teacher's deadline-polling
// cancellation pattern for UDP sockets.
const readPollInterval = 200 * time.Millisecond

// Device identifies a sensor discovered via broadcast.
type Device struct {
	Addr          *net.UDPAddr
	BroadcastCode [16]byte
	DevType       wire.DeviceType
}

// WaitForOne blocks until a single valid broadcast message arrives, or ctx
// is cancelled. There is no retry policy at this level: the first
// datagram received is parsed and classified exactly once, and if it
// isn't a broadcast message the call fails immediately rather than
// waiting for another. Callers reissue WaitForOne themselves if desired.
func WaitForOne(ctx context.Context) (*Device, error) {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf(":%d", BroadcastPort))
	if err != nil {
		return nil, fmt.Errorf("discovery: resolve broadcast address: %w", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("discovery: listen on broadcast port: %w", err)
	}
	defer conn.Close()

	return waitForOneOn(ctx, conn)
}

// waitForOneOn is split out from WaitForOne so tests can inject a
// *net.UDPConn bound to an ephemeral port instead of the fixed broadcast
// port.
func waitForOneOn(ctx context.Context, conn *net.UDPConn) (*Device, error) {
	buf := make([]byte, 256)

	// This loop only accounts for ctx cancellation while no datagram has
	// arrived yet -- it is not a protocol-level retry. Once a datagram is
	// actually received, it is classified exactly once below and the call
	// returns either way.
	var n int
	var raddr *net.UDPAddr
	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrNoneBroadcastReceived, ctx.Err())
		default:
		}

		conn.SetReadDeadline(time.Now().Add(readPollInterval))
		var err error
		n, raddr, err = conn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			return nil, fmt.Errorf("discovery: read broadcast datagram: %w", err)
		}
		break
	}

	f, err := frame.Parse(buf[:n])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoneBroadcastReceived, err)
	}
	if f.CmdType != wire.CommandTypeMessage || f.CommandSet != wire.CommandSetGeneral ||
		f.CommandID != wire.GeneralBroadcastMessage {
		return nil, fmt.Errorf("%w: got cmd_type=%v cmd_set=%v cmd_id=%v", ErrNoneBroadcastReceived, f.CmdType, f.CommandSet, f.CommandID)
	}
	msg, ok := f.Body.(*wire.BroadcastMessage)
	if !ok {
		return nil, fmt.Errorf("%w: decoded as unexpected type %T", ErrNoneBroadcastReceived, f.Body)
	}

	return &Device{
		Addr:          raddr,
		BroadcastCode: msg.BroadcastCode,
		DevType:       wire.ParseDeviceType(msg.DevType),
	}, nil
}
