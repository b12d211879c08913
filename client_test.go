package mid70

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fenwick-systems/mid70lidar/internal/frame"
	"github.com/fenwick-systems/mid70lidar/internal/mid70cfg"
	"github.com/fenwick-systems/mid70lidar/internal/wire"
)

// fakeSensor replies to a Handshake with ret_code 0 and then echoes every
// subsequent request as a StartStopSamplingResponse/HeartbeatResponse
// depending on cmd_id, simulating enough of the real device to exercise
// Client end to end over loopback. If wrongVariant is set, it replies to
// StartStopSampling with a SetModeResponse instead of the canonical
// StartStopSamplingResponse, simulating the sensor returning the wrong
// variant.
type fakeSensor struct {
	conn *net.UDPConn
}

func startFakeSensor(t *testing.T, wrongVariant bool) *fakeSensor {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: SensorCmdPort})
	if err != nil {
		t.Skipf("cannot bind fixed sensor command port %d in this environment: %v", SensorCmdPort, err)
	}
	s := &fakeSensor{conn: conn}
	t.Cleanup(func() { conn.Close() })

	buf := make([]byte, 2048)
	go func() {
		for {
			conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			n, raddr, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			f, err := frame.Parse(buf[:n])
			if err != nil {
				continue
			}

			var respData []byte
			switch f.CommandID {
			case wire.GeneralHandshake:
				respData, _ = frame.Serialize(frame.NewResponseFrame(f.SeqNum, &wire.HandshakeResponse{RetCode: 0}))
			case wire.GeneralHeartbeat:
				respData, _ = frame.Serialize(frame.NewResponseFrame(f.SeqNum, &wire.HeartbeatResponse{RetCode: 0, WorkState: 1}))
			case wire.GeneralStartStopSampling:
				if wrongVariant {
					respData, _ = frame.Serialize(frame.NewResponseFrame(f.SeqNum, &wire.SetModeResponse{RetCode: 0}))
				} else {
					respData, _ = frame.Serialize(frame.NewResponseFrame(f.SeqNum, &wire.StartStopSamplingResponse{RetCode: 0}))
				}
			default:
				continue
			}
			conn.WriteToUDP(respData, raddr)
		}
	}()
	return s
}

// TestS3HandshakeAndSetSampling is scenario S3.
func TestS3HandshakeAndSetSampling(t *testing.T) {
	startFakeSensor(t, false)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := Handshake(ctx, "127.0.0.1", wire.DeviceTypeMid70, mid70cfg.Empty())
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.SetSampling(ctx, true))
	require.NoError(t, client.SetSampling(ctx, false))
}

func TestHandshakeFailsWithoutSensor(t *testing.T) {
	cfg := mid70cfg.Empty()
	short := "200ms"
	cfg.CommandTimeout = &short

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := Handshake(ctx, "127.0.0.1", wire.DeviceTypeMid70, cfg)
	require.Error(t, err)

	var mErr *Error
	require.ErrorAs(t, err, &mErr)
	require.Equal(t, HandshakeFailed, mErr.Kind)
}

// TestS6WrongVariantResponse is scenario S6: when the sensor replies to
// StartStopSampling with a SetMode response, set_sampling returns
// AckWrong(response).
func TestS6WrongVariantResponse(t *testing.T) {
	startFakeSensor(t, true)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := Handshake(ctx, "127.0.0.1", wire.DeviceTypeMid70, mid70cfg.Empty())
	require.NoError(t, err)
	defer client.Close()

	err = client.SetSampling(ctx, true)
	require.Error(t, err)

	var mErr *Error
	require.ErrorAs(t, err, &mErr)
	require.Equal(t, AckWrong, mErr.Kind)
	_, ok := mErr.Response.(*wire.SetModeResponse)
	require.True(t, ok)
}
