// Package mid70 is a client for Livox Mid-70 class LiDAR sensors,
// speaking the vendor's UDP control/data protocol directly.
package mid70

import (
	"fmt"

	"github.com/fenwick-systems/mid70lidar/internal/wire"
)

// ErrorKind classifies the failure modes a Client call can report, beyond
// whatever wrapped I/O or codec error triggered them.
type ErrorKind int

const (
	// IoError wraps a network-level failure (socket read/write/bind).
	IoError ErrorKind = iota
	// NoneBroadcastReceived reports that discovery gave up without
	// seeing any broadcast datagram.
	NoneBroadcastReceived
	// HandshakeFailed reports that the sensor rejected or never
	// acknowledged the Handshake request.
	HandshakeFailed
	// AckFailed reports a response whose ret_code was non-zero.
	AckFailed
	// AckWrong reports a response frame whose cmd_set/cmd_id didn't
	// match the request that was sent.
	AckWrong
	// BadResponse reports a datagram that parsed successfully but wasn't
	// a cmd_type=Response frame at all (the command socket received an
	// unsolicited Message or Request instead of the expected reply).
	BadResponse
	// ParseError reports a response datagram that failed to parse as a
	// control frame (bad CRC, unknown cmd_set/cmd_id, truncated payload).
	ParseError
	// AsyncChannelError reports a failure in the background command or
	// data-stream plumbing unrelated to any one caller's request.
	AsyncChannelError
)

func (k ErrorKind) String() string {
	switch k {
	case IoError:
		return "io_error"
	case NoneBroadcastReceived:
		return "none_broadcast_received"
	case HandshakeFailed:
		return "handshake_failed"
	case AckFailed:
		return "ack_failed"
	case AckWrong:
		return "ack_wrong"
	case BadResponse:
		return "bad_response"
	case ParseError:
		return "parse_error"
	case AsyncChannelError:
		return "async_channel_error"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every Client operation. Kind
// classifies the failure; the optional typed fields let callers inspect
// the offending value programmatically instead of parsing Error()'s text.
type Error struct {
	Kind ErrorKind

	// RetCode is populated for AckFailed.
	RetCode uint8
	// Device is populated for HandshakeFailed.
	Device wire.DeviceType
	// Response is populated for AckWrong and BadResponse, carrying
	// whatever frame body was actually received.
	Response any

	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case AckFailed:
		return fmt.Sprintf("mid70: command rejected, ret_code=%d", e.RetCode)
	case HandshakeFailed:
		return fmt.Sprintf("mid70: handshake failed for device %s: %v", e.Device, e.Err)
	case AckWrong:
		return fmt.Sprintf("mid70: unexpected response type %T", e.Response)
	case BadResponse:
		return fmt.Sprintf("mid70: command socket received a non-response payload: %T", e.Response)
	case ParseError:
		return fmt.Sprintf("mid70: malformed response datagram: %v", e.Err)
	default:
		if e.Err != nil {
			return fmt.Sprintf("mid70: %s: %v", e.Kind, e.Err)
		}
		return fmt.Sprintf("mid70: %s", e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }
