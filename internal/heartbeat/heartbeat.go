// Package heartbeat keeps a handshake-established session alive by
// sending a periodic Heartbeat request through the command multiplexer.
package heartbeat

import (
	"context"
	"log"
	"time"

	"github.com/fenwick-systems/mid70lidar/internal/wire"
)

// Period is the sensor's required heartbeat cadence; missing it for too
// long causes the sensor to consider the session dead and stop sampling.
const Period = 750 * time.Millisecond

// Supervisor ticks at Period and submits a Heartbeat request on each
// tick. A failed heartbeat is logged, never fatal: the sensor tolerates
// occasional misses, and the caller decides independently whether to
// tear the session down.
type Supervisor struct {
	submit submitFunc
	period time.Duration
	stop   chan struct{}
	done   chan struct{}
}

// submitFunc submits req and returns the decoded response body, so the
// heartbeat loop can inspect ret_code rather than only the transport-level
// error.
type submitFunc func(ctx context.Context, req wire.RequestBody) (wire.ResponseBody, error)

// New starts a Supervisor that submits heartbeats through submit every
// period (Period if period is zero).
func New(submit submitFunc, period time.Duration) *Supervisor {
	if period <= 0 {
		period = Period
	}
	s := &Supervisor{
		submit: submit,
		period: period,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

// Stop signals the ticker goroutine to exit and blocks until it has,
// mirroring the vendor reference client's one-shot cancellation race
// between the ticker and a stop signal.
func (s *Supervisor) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Supervisor) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.period)
			resp, err := s.submit(ctx, &wire.HeartbeatRequest{})
			cancel()
			switch {
			case err != nil:
				log.Printf("heartbeat: request failed: %v", err)
			default:
				hb, ok := resp.(*wire.HeartbeatResponse)
				if !ok {
					log.Printf("heartbeat: unexpected response type %T", resp)
				} else if hb.RetCode != 0 {
					log.Printf("heartbeat: sensor rejected heartbeat, ret_code=%d", hb.RetCode)
				} else {
					log.Printf("heartbeat: ok, work_state=%d", hb.WorkState)
				}
			}
		}
	}
}
