package pointstream

import (
	"encoding/binary"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/fenwick-systems/mid70lidar/internal/frame"
	"github.com/fenwick-systems/mid70lidar/internal/wire"
)

// NewHomogeneousMatrix allocates the 4x96 destination matrix used by
// FillHomogeneousMatrix. Callers on a hot path allocate this once and
// reuse it across datagrams.
func NewHomogeneousMatrix() *mat.Dense {
	return mat.NewDense(4, wire.PointsPerFrame, nil)
}

// FillHomogeneousMatrix decodes a DT2 point cloud datagram directly into
// dst (which must be 4x96), augmenting each (x,y,z) with a trailing row
// of 1.0. It reads x/y/z straight off the wire with encoding/binary
// rather than going through wire.DecodeBody's reflection, so repeated
// calls on a reused dst do not allocate on the hot path.
func FillHomogeneousMatrix(dst *mat.Dense, data []byte) error {
	if len(data) < headerLen {
		return &frame.ParseError{Kind: frame.InvalidData}
	}
	dataType := data[headerLen-1]
	if dataType != wire.DataTypeDT2 {
		return fmt.Errorf("pointstream: homogeneous matrix form requires data_type 0x02, got %#02x", dataType)
	}

	rows, cols := dst.Dims()
	if rows != 4 || cols != wire.PointsPerFrame {
		return fmt.Errorf("pointstream: destination matrix must be 4x%d, got %dx%d", wire.PointsPerFrame, rows, cols)
	}

	body := data[headerLen:]
	if len(body) != wire.DT2ByteLen*wire.PointsPerFrame {
		return &frame.ParseError{Kind: frame.WrongPointCloudSize}
	}

	for i := 0; i < wire.PointsPerFrame; i++ {
		chunk := body[i*wire.DT2ByteLen : (i+1)*wire.DT2ByteLen]
		x := int32(binary.LittleEndian.Uint32(chunk[0:4]))
		y := int32(binary.LittleEndian.Uint32(chunk[4:8]))
		z := int32(binary.LittleEndian.Uint32(chunk[8:12]))
		dst.Set(0, i, float64(x))
		dst.Set(1, i, float64(y))
		dst.Set(2, i, float64(z))
		dst.Set(3, i, 1.0)
	}
	return nil
}
