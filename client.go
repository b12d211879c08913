package mid70

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fenwick-systems/mid70lidar/internal/cmdmux"
	"github.com/fenwick-systems/mid70lidar/internal/frame"
	"github.com/fenwick-systems/mid70lidar/internal/heartbeat"
	"github.com/fenwick-systems/mid70lidar/internal/mid70cfg"
	"github.com/fenwick-systems/mid70lidar/internal/pointstream"
	"github.com/fenwick-systems/mid70lidar/internal/wire"
)

// SensorCmdPort is the sensor's fixed command-channel UDP port.
const SensorCmdPort = 65000

// Client is a live session with one Mid-70 sensor: a connected command
// channel serialized through a cmdmux.Mux, a running heartbeat
// supervisor, and a data channel the caller reads point clouds from via
// Stream.
type Client struct {
	device   wire.DeviceType
	cmdConn  *net.UDPConn
	dataConn *net.UDPConn
	mux      *cmdmux.Mux
	hb       *heartbeat.Supervisor
	Stream   *pointstream.Stream
}

// Handshake performs the full connection sequence against a sensor of the
// given device type at sensorIP: binds the command and data sockets per
// cfg, sends the Handshake request directly (bypassing the multiplexer,
// which doesn't exist yet), and on a zero ret_code starts the command
// multiplexer and heartbeat supervisor. device is typically taken from a
// prior discovery.Device and is carried on HandshakeFailed for
// diagnostics; cfg may be nil, in which case mid70cfg defaults apply.
func Handshake(ctx context.Context, sensorIP string, device wire.DeviceType, cfg *mid70cfg.Config) (*Client, error) {
	if cfg == nil {
		cfg = mid70cfg.Empty()
	}

	cmdConn, err := dialCmdSocket(sensorIP, cfg.GetCmdPort())
	if err != nil {
		return nil, &Error{Kind: IoError, Err: err}
	}

	dataConn, err := bindDataSocket(cfg.GetDataPort())
	if err != nil {
		cmdConn.Close()
		return nil, &Error{Kind: IoError, Err: err}
	}

	localCmdPort, localDataPort, localIMUPort, err := localHandshakePorts(cmdConn, dataConn, cfg)
	if err != nil {
		cmdConn.Close()
		dataConn.Close()
		return nil, &Error{Kind: IoError, Err: err}
	}

	userIP, err := parseUserIP(cfg.GetUserIP())
	if err != nil {
		cmdConn.Close()
		dataConn.Close()
		return nil, &Error{Kind: HandshakeFailed, Err: err}
	}

	req := &wire.HandshakeRequest{
		UserIP:   userIP,
		DataPort: localDataPort,
		CmdPort:  localCmdPort,
		IMUPort:  localIMUPort,
	}
	data, err := frame.Serialize(frame.NewRequestFrame(0, req))
	if err != nil {
		cmdConn.Close()
		dataConn.Close()
		return nil, &Error{Kind: IoError, Err: err}
	}
	if _, err := cmdConn.Write(data); err != nil {
		cmdConn.Close()
		dataConn.Close()
		return nil, &Error{Kind: IoError, Err: err}
	}

	resp, err := readHandshakeResponse(ctx, cmdConn, cfg)
	if err != nil {
		cmdConn.Close()
		dataConn.Close()
		return nil, &Error{Kind: HandshakeFailed, Device: device, Err: err}
	}
	if resp.RetCode != 0 {
		cmdConn.Close()
		dataConn.Close()
		return nil, &Error{Kind: HandshakeFailed, Device: device, Err: fmt.Errorf("ret_code=%d", resp.RetCode)}
	}

	mux := cmdmux.New(cmdConn, cfg.GetInboxCapacity(), cfg.GetCommandTimeout())

	hb := heartbeat.New(func(ctx context.Context, req wire.RequestBody) (wire.ResponseBody, error) {
		f, err := mux.Submit(ctx, req)
		if err != nil {
			return nil, err
		}
		resp, ok := f.Body.(wire.ResponseBody)
		if !ok {
			return nil, fmt.Errorf("heartbeat: unexpected response type %T", f.Body)
		}
		return resp, nil
	}, cfg.GetHeartbeatPeriod())

	return &Client{
		device:   device,
		cmdConn:  cmdConn,
		dataConn: dataConn,
		mux:      mux,
		hb:       hb,
		Stream:   pointstream.NewStream(dataConn),
	}, nil
}

// Device reports the sensor model this session was established with.
func (c *Client) Device() wire.DeviceType { return c.device }

func dialCmdSocket(sensorIP string, localPort int) (*net.UDPConn, error) {
	raddr := &net.UDPAddr{IP: net.ParseIP(sensorIP), Port: SensorCmdPort}
	laddr := &net.UDPAddr{Port: localPort}
	conn, err := net.DialUDP("udp", laddr, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial command socket: %w", err)
	}
	return conn, nil
}

func bindDataSocket(localPort int) (*net.UDPConn, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: localPort})
	if err != nil {
		return nil, fmt.Errorf("bind data socket: %w", err)
	}
	return conn, nil
}

func localHandshakePorts(cmdConn, dataConn *net.UDPConn, cfg *mid70cfg.Config) (cmdPort, dataPort, imuPort uint16, err error) {
	cAddr, ok := cmdConn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return 0, 0, 0, fmt.Errorf("command socket has no UDP local address")
	}
	dAddr, ok := dataConn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return 0, 0, 0, fmt.Errorf("data socket has no UDP local address")
	}
	return uint16(cAddr.Port), uint16(dAddr.Port), uint16(cfg.GetIMUPort()), nil
}

func parseUserIP(s string) ([4]byte, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return [4]byte{}, fmt.Errorf("invalid user_ip %q", s)
	}
	v4 := ip.To4()
	if v4 == nil {
		return [4]byte{}, fmt.Errorf("user_ip %q is not an IPv4 address", s)
	}
	return [4]byte{v4[0], v4[1], v4[2], v4[3]}, nil
}

// readPollInterval bounds a single blocking Read before the handshake
// wait loop re-checks ctx, the same deadline-polling pattern used by
// internal/discovery for cancellable UDP reads.
const readPollInterval = 100 * time.Millisecond

func readHandshakeResponse(ctx context.Context, conn *net.UDPConn, cfg *mid70cfg.Config) (*wire.HandshakeResponse, error) {
	overallDeadline := time.Now().Add(cfg.GetCommandTimeout())
	buf := make([]byte, 256)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if time.Now().After(overallDeadline) {
			return nil, fmt.Errorf("timed out waiting for handshake response")
		}

		conn.SetReadDeadline(time.Now().Add(readPollInterval))
		n, err := conn.Read(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			return nil, err
		}

		f, err := frame.Parse(buf[:n])
		if err != nil {
			continue
		}
		if f.CmdType != wire.CommandTypeResponse || f.CommandSet != wire.CommandSetGeneral ||
			f.CommandID != wire.GeneralHandshake {
			continue
		}
		resp, ok := f.Body.(*wire.HandshakeResponse)
		if !ok {
			return nil, fmt.Errorf("handshake response decoded as unexpected type %T", f.Body)
		}
		return resp, nil
	}
}

// SendCommand submits req through the command multiplexer and returns the
// decoded response body, or an *Error classifying what went wrong.
func (c *Client) SendCommand(ctx context.Context, req wire.RequestBody) (wire.ResponseBody, error) {
	f, err := c.mux.Submit(ctx, req)
	if err != nil {
		var perr *frame.ParseError
		if errors.As(err, &perr) {
			return nil, &Error{Kind: ParseError, Err: err}
		}
		return nil, &Error{Kind: IoError, Err: err}
	}
	if f.CmdType != wire.CommandTypeResponse {
		return nil, &Error{Kind: BadResponse, Response: f.Body}
	}
	if f.CommandSet != req.CommandSet() || f.CommandID != req.CommandID() {
		return nil, &Error{Kind: AckWrong, Response: f.Body}
	}
	resp, ok := f.Body.(wire.ResponseBody)
	if !ok {
		return nil, &Error{Kind: BadResponse, Response: f.Body}
	}
	return resp, nil
}

// SetSampling starts or stops point cloud sampling, failing with AckFailed
// if the sensor reports a non-zero ret_code.
func (c *Client) SetSampling(ctx context.Context, enable bool) error {
	var ctrl uint8
	if enable {
		ctrl = 1
	}
	resp, err := c.SendCommand(ctx, &wire.StartStopSamplingRequest{SampleCtrl: ctrl})
	if err != nil {
		return err
	}
	sampling, ok := resp.(*wire.StartStopSamplingResponse)
	if !ok {
		return &Error{Kind: AckWrong, Response: resp}
	}
	if sampling.RetCode != 0 {
		return &Error{Kind: AckFailed, RetCode: sampling.RetCode}
	}
	return nil
}

// Close stops the heartbeat supervisor and the command multiplexer
// concurrently (both can block briefly on their own goroutines exiting),
// then closes the data socket.
func (c *Client) Close() error {
	g := new(errgroup.Group)
	g.Go(func() error {
		c.hb.Stop()
		return nil
	})
	g.Go(func() error {
		return c.mux.Close()
	})
	err := g.Wait()

	if dataErr := c.dataConn.Close(); err == nil {
		err = dataErr
	}
	return err
}
