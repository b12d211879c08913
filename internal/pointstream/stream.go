package pointstream

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/mat"
)

// datagramBufSize mirrors the vendor reference client's receive buffer
// for the data channel.
const datagramBufSize = 2048

// Stream yields decoded point cloud datagrams from a data-channel
// connection, one UDP datagram at a time. It terminates only when the
// underlying read fails; UDP has no true end-of-stream.
type Stream struct {
	conn   io.Reader
	buf    []byte
	matrix *mat.Dense
}

// NewStream wraps conn (typically a *net.UDPConn already bound to the
// host-chosen data port) for decoding.
func NewStream(conn io.Reader) *Stream {
	return &Stream{
		conn:   conn,
		buf:    make([]byte, datagramBufSize),
		matrix: NewHomogeneousMatrix(),
	}
}

// NextFrame blocks for one datagram and decodes it into a raw
// PointCloudFrame. A parse failure (WrongPointCloudSize, etc.) is
// returned as this call's error, not treated as stream-fatal; only a
// read error from conn ends the stream.
func (s *Stream) NextFrame() (*PointCloudFrame, error) {
	n, err := s.conn.Read(s.buf)
	if err != nil {
		return nil, fmt.Errorf("pointstream: read datagram: %w", err)
	}
	return ParseFrame(s.buf[:n])
}

// NextMatrix blocks for one datagram and decodes it into the stream's
// reusable 4x96 homogeneous matrix. The returned matrix is overwritten by
// the next call; callers needing to retain a frame across calls must
// copy it out.
func (s *Stream) NextMatrix() (*mat.Dense, error) {
	n, err := s.conn.Read(s.buf)
	if err != nil {
		return nil, fmt.Errorf("pointstream: read datagram: %w", err)
	}
	if err := FillHomogeneousMatrix(s.matrix, s.buf[:n]); err != nil {
		return nil, err
	}
	return s.matrix, nil
}
