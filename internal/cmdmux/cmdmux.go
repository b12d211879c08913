// Package cmdmux serializes command/response traffic over the Mid-70's
// command channel: exactly one request is in flight at a time, requests
// are served strictly in the order submitted, and the first datagram
// back after a send is accepted positionally as that send's response --
// no out-of-order matching by seq_num is attempted.
package cmdmux

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/fenwick-systems/mid70lidar/internal/frame"
	"github.com/fenwick-systems/mid70lidar/internal/wire"
)

// DefaultInboxCapacity bounds the number of queued-but-not-yet-sent
// requests before Submit blocks the caller.
const DefaultInboxCapacity = 128

// DefaultResponseTimeout bounds how long Submit waits for a matching
// response before failing the request.
const DefaultResponseTimeout = 2 * time.Second

// ErrClosed is returned by Submit once the multiplexer has been closed.
var ErrClosed = errors.New("cmdmux: closed")

// ErrResponseTimeout is returned when no matching response arrives within
// the configured timeout.
var ErrResponseTimeout = errors.New("cmdmux: response timed out")

type job struct {
	id     uuid.UUID
	req    wire.RequestBody
	result chan result
}

type result struct {
	frame *frame.Frame
	err   error
}

// Mux owns a connected command-channel socket and runs the single monitor
// goroutine that sends queued requests and matches their responses. Submit
// is the only safe way for other goroutines to interact with it.
type Mux struct {
	conn    *net.UDPConn
	inbox   chan job
	timeout time.Duration
	seqNum  uint32 // written only by the monitor goroutine; atomic for NextSeqNum

	done chan struct{}
}

// New starts a Mux's monitor goroutine over conn, which must already be
// connected to the sensor's fixed command port. Close stops the goroutine
// and releases conn.
func New(conn *net.UDPConn, inboxCapacity int, timeout time.Duration) *Mux {
	if inboxCapacity <= 0 {
		inboxCapacity = DefaultInboxCapacity
	}
	if timeout <= 0 {
		timeout = DefaultResponseTimeout
	}
	m := &Mux{
		conn:    conn,
		inbox:   make(chan job, inboxCapacity),
		timeout: timeout,
		done:    make(chan struct{}),
	}
	go m.run()
	return m
}

// NextSeqNum reports the sequence number the monitor loop will assign to
// the next outgoing request. Intended for tests and diagnostics.
func (m *Mux) NextSeqNum() uint16 {
	return uint16(atomic.LoadUint32(&m.seqNum) + 1)
}

// Submit enqueues req and blocks until a matching response arrives, the
// per-request timeout elapses, or ctx is cancelled. A failure on one
// request never poisons the multiplexer: the monitor loop continues
// serving the next queued request regardless of the outcome.
func (m *Mux) Submit(ctx context.Context, req wire.RequestBody) (*frame.Frame, error) {
	j := job{id: uuid.New(), req: req, result: make(chan result, 1)}

	select {
	case <-m.done:
		return nil, ErrClosed
	default:
	}

	select {
	case m.inbox <- j:
	case <-m.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-j.result:
		return r.frame, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops accepting new requests and shuts the monitor loop down.
// Requests already queued are still sent and completed before the loop
// exits; Close blocks until then and closes the socket.
func (m *Mux) Close() error {
	close(m.inbox)
	<-m.done
	return m.conn.Close()
}

// run is the single monitor goroutine: it owns seqNum and the socket, so
// no request is ever sent concurrently with another.
func (m *Mux) run() {
	defer close(m.done)

	for j := range m.inbox {
		seq := uint16(atomic.AddUint32(&m.seqNum, 1))
		r := m.roundTrip(seq, j.req)
		if r.err != nil {
			log.Printf("cmdmux: request %s (seq=%d) failed: %v", j.id, seq, r.err)
		}
		j.result <- r
	}
}

// respBufSize is the fixed single-datagram read buffer for a command
// response.
const respBufSize = 1024

func (m *Mux) roundTrip(seq uint16, req wire.RequestBody) result {
	data, err := frame.Serialize(frame.NewRequestFrame(seq, req))
	if err != nil {
		return result{err: fmt.Errorf("cmdmux: serialize request: %w", err)}
	}

	if err := m.conn.SetWriteDeadline(time.Now().Add(m.timeout)); err != nil {
		return result{err: fmt.Errorf("cmdmux: set write deadline: %w", err)}
	}
	if _, err := m.conn.Write(data); err != nil {
		return result{err: fmt.Errorf("cmdmux: write request: %w", err)}
	}

	if err := m.conn.SetReadDeadline(time.Now().Add(m.timeout)); err != nil {
		return result{err: fmt.Errorf("cmdmux: set read deadline: %w", err)}
	}

	buf := make([]byte, respBufSize)
	n, err := m.conn.Read(buf)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return result{err: ErrResponseTimeout}
		}
		return result{err: fmt.Errorf("cmdmux: read response: %w", err)}
	}

	// Positional matching: this datagram is the reply to this send,
	// whatever it turns out to be. A parse failure is delivered as-is so
	// the caller can surface it as a ParseError; a frame that parses but
	// isn't cmd_type=Response is delivered unfiltered too, so the caller
	// can surface it as a BadResponse.
	f, err := frame.Parse(buf[:n])
	if err != nil {
		return result{err: fmt.Errorf("cmdmux: parse response: %w", err)}
	}
	return result{frame: f}
}
