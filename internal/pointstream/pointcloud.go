// Package pointstream decodes point cloud datagrams from the Mid-70's
// data channel, either into the raw PointCloudFrame representation or
// into a dense 4x96 homogeneous-coordinate matrix suitable for affine
// projection.
package pointstream

import (
	"encoding/binary"

	"github.com/fenwick-systems/mid70lidar/internal/frame"
	"github.com/fenwick-systems/mid70lidar/internal/wire"
)

// headerLen is the fixed point cloud header: version(1) + slot_id(1) +
// lidar_id(1) + reserved(1) + status_code(4) + timestamp_type(1) +
// timestamp(8) + data_type(1) = 18 bytes, after which exactly 96 point
// records follow.
const headerLen = 18

// PointCloudFrame is the decoded form of one data-channel datagram.
// Exactly one of DT2Points/DT3Points is populated, selected by DataType.
type PointCloudFrame struct {
	Version       uint8
	SlotID        uint8
	LidarID       uint8
	StatusCode    wire.LiDARStatusCode
	TimestampType uint8
	Timestamp     uint64
	DataType      uint8
	DT2Points     []wire.DT2
	DT3Points     []wire.DT3
}

// ParseFrame decodes one point cloud datagram. It fails with
// WrongPointCloudSize unless the payload carries exactly
// wire.PointsPerFrame records of the declared data type.
func ParseFrame(data []byte) (*PointCloudFrame, error) {
	if len(data) < headerLen {
		return nil, &frame.ParseError{Kind: frame.InvalidData}
	}

	f := &PointCloudFrame{
		Version:    data[0],
		SlotID:     data[1],
		LidarID:    data[2],
		StatusCode: wire.LiDARStatusCode(binary.LittleEndian.Uint32(data[4:8])),
		// Timestamp bytes are decoded for real per the redesign note;
		// the vendor reference implementation discards them.
		TimestampType: data[8],
		Timestamp:     binary.LittleEndian.Uint64(data[9:17]),
		DataType:      data[17],
	}

	body := data[headerLen:]
	switch f.DataType {
	case wire.DataTypeDT2:
		points, err := decodeDT2Points(body)
		if err != nil {
			return nil, err
		}
		f.DT2Points = points
	case wire.DataTypeDT3:
		points, err := decodeDT3Points(body)
		if err != nil {
			return nil, err
		}
		f.DT3Points = points
	default:
		return nil, &frame.ParseError{Kind: frame.InvalidData}
	}

	return f, nil
}

func decodeDT2Points(body []byte) ([]wire.DT2, error) {
	if len(body) != wire.DT2ByteLen*wire.PointsPerFrame {
		return nil, &frame.ParseError{Kind: frame.WrongPointCloudSize}
	}
	points := make([]wire.DT2, wire.PointsPerFrame)
	for i := range points {
		chunk := body[i*wire.DT2ByteLen : (i+1)*wire.DT2ByteLen]
		if err := wire.DecodeBody(chunk, &points[i]); err != nil {
			return nil, &frame.ParseError{Kind: frame.InvalidData, Err: err}
		}
	}
	return points, nil
}

func decodeDT3Points(body []byte) ([]wire.DT3, error) {
	if len(body) != wire.DT3ByteLen*wire.PointsPerFrame {
		return nil, &frame.ParseError{Kind: frame.WrongPointCloudSize}
	}
	points := make([]wire.DT3, wire.PointsPerFrame)
	for i := range points {
		chunk := body[i*wire.DT3ByteLen : (i+1)*wire.DT3ByteLen]
		if err := wire.DecodeBody(chunk, &points[i]); err != nil {
			return nil, &frame.ParseError{Kind: frame.InvalidData, Err: err}
		}
	}
	return points, nil
}
