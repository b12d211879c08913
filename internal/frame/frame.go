// Package frame implements the Mid-70 control channel's wire envelope:
// a length-delimited, doubly-checksummed frame carrying a two-level
// discriminated union payload defined in package wire.
package frame

import (
	"encoding/binary"
	"fmt"
	"log"

	"github.com/fenwick-systems/mid70lidar/internal/crcx"
	"github.com/fenwick-systems/mid70lidar/internal/wire"
)

// SOF is the constant start-of-frame byte.
const SOF = 0xAA

// minFrameLen is the shortest legal frame: the 9-byte header (including
// header CRC) plus the 4-byte frame CRC, with an empty payload.
const minFrameLen = 13

// CurrentVersion is the protocol version this package writes. Parse
// accepts any version byte (see §9 known quirk) and only logs a warning
// when it differs.
const CurrentVersion = 1

// Frame is a fully decoded (or ready-to-encode) control frame.
type Frame struct {
	Version    uint8
	CmdType    wire.CommandType
	SeqNum     uint16
	CommandSet wire.CommandSet
	CommandID  wire.CommandID
	// Body holds a wire.RequestBody, wire.ResponseBody, or
	// wire.MessageBody pointer depending on CmdType.
	Body any
}

// NewRequestFrame builds a Frame wrapping a request body.
func NewRequestFrame(seqNum uint16, body wire.RequestBody) *Frame {
	return &Frame{
		Version:    CurrentVersion,
		CmdType:    wire.CommandTypeRequest,
		SeqNum:     seqNum,
		CommandSet: body.CommandSet(),
		CommandID:  body.CommandID(),
		Body:       body,
	}
}

// NewResponseFrame builds a Frame wrapping a response body.
func NewResponseFrame(seqNum uint16, body wire.ResponseBody) *Frame {
	return &Frame{
		Version:    CurrentVersion,
		CmdType:    wire.CommandTypeResponse,
		SeqNum:     seqNum,
		CommandSet: body.CommandSet(),
		CommandID:  body.CommandID(),
		Body:       body,
	}
}

// NewMessageFrame builds a Frame wrapping a message body.
func NewMessageFrame(seqNum uint16, body wire.MessageBody) *Frame {
	return &Frame{
		Version:    CurrentVersion,
		CmdType:    wire.CommandTypeMessage,
		SeqNum:     seqNum,
		CommandSet: body.CommandSet(),
		CommandID:  body.CommandID(),
		Body:       body,
	}
}

// Serialize composes the wire bytes for f: header, header CRC-16, the
// cmd_set/cmd_id-prefixed payload, and the whole-frame CRC-32.
func Serialize(f *Frame) ([]byte, error) {
	bodyBytes, err := wire.EncodeBody(f.Body)
	if err != nil {
		return nil, fmt.Errorf("frame: serialize: %w", err)
	}

	payload := make([]byte, 0, 2+len(bodyBytes))
	payload = append(payload, byte(f.CommandSet), byte(f.CommandID))
	payload = append(payload, bodyBytes...)

	length := uint16(minFrameLen + len(payload))

	buf := make([]byte, 0, length)
	buf = append(buf, SOF, f.Version)
	buf = appendUint16LE(buf, length)
	buf = append(buf, byte(f.CmdType))
	buf = appendUint16LE(buf, f.SeqNum)

	headerCRC := crcx.Header16(buf[:7])
	buf = appendUint16LE(buf, headerCRC)

	buf = append(buf, payload...)

	frameCRC := crcx.Frame32(buf)
	buf = appendUint32LE(buf, frameCRC)

	return buf, nil
}

// Parse validates and decodes data into a Frame. Validation follows a
// strict order: SOF, declared length, header CRC-16, frame CRC-32, the
// cmd_set check, then cmd_type and cmd_id dispatch. The version byte is
// captured but never rejected; a mismatch only logs a warning.
func Parse(data []byte) (*Frame, error) {
	if len(data) == 0 || data[0] != SOF {
		return nil, &ParseError{Kind: InvalidSOF}
	}
	if len(data) < 4 {
		return nil, &ParseError{Kind: InvalidLength}
	}

	length := binary.LittleEndian.Uint16(data[2:4])
	if int(length) < minFrameLen || int(length) > len(data) {
		return nil, &ParseError{Kind: InvalidLength}
	}
	data = data[:length]

	version := data[1]
	if version != CurrentVersion {
		log.Printf("frame: unexpected version byte %d (want %d); accepting anyway", version, CurrentVersion)
	}

	frameHeaderCRC := binary.LittleEndian.Uint16(data[7:9])
	calculatedHeaderCRC := crcx.Header16(data[:7])
	if frameHeaderCRC != calculatedHeaderCRC {
		return nil, &ParseError{Kind: InvalidCrc16, FrameCRC16: frameHeaderCRC, CalculatedCRC16: calculatedHeaderCRC}
	}

	frameCRC := binary.LittleEndian.Uint32(data[length-4:])
	calculatedFrameCRC := crcx.Frame32(data[:length-4])
	if frameCRC != calculatedFrameCRC {
		return nil, &ParseError{Kind: InvalidCrc32}
	}

	cmdType := wire.CommandType(data[4])
	seqNum := binary.LittleEndian.Uint16(data[5:7])
	payload := data[9 : length-4]

	if len(payload) < 2 {
		return nil, &ParseError{Kind: InvalidData}
	}
	cmdSet := wire.CommandSet(payload[0])
	cmdID := wire.CommandID(payload[1])
	body := payload[2:]

	if !wire.KnownCommandSet(cmdSet) {
		return nil, &ParseError{Kind: InvalidCommandType}
	}

	var decoded any
	switch cmdType {
	case wire.CommandTypeRequest:
		v, ok := wire.NewRequest(cmdSet, cmdID)
		if !ok {
			return nil, &ParseError{Kind: InvalidData}
		}
		if err := wire.DecodeBody(body, v); err != nil {
			return nil, &ParseError{Kind: InvalidData, Err: err}
		}
		decoded = v
	case wire.CommandTypeResponse:
		v, ok := wire.NewResponse(cmdSet, cmdID)
		if !ok {
			return nil, &ParseError{Kind: InvalidData}
		}
		if err := wire.DecodeBody(body, v); err != nil {
			return nil, &ParseError{Kind: InvalidData, Err: err}
		}
		decoded = v
	case wire.CommandTypeMessage:
		v, ok := wire.NewMessage(cmdSet, cmdID)
		if !ok {
			return nil, &ParseError{Kind: InvalidData}
		}
		if err := wire.DecodeBody(body, v); err != nil {
			return nil, &ParseError{Kind: InvalidData, Err: err}
		}
		decoded = v
	default:
		return nil, &ParseError{Kind: InvalidCommandType}
	}

	return &Frame{
		Version:    version,
		CmdType:    cmdType,
		SeqNum:     seqNum,
		CommandSet: cmdSet,
		CommandID:  cmdID,
		Body:       decoded,
	}, nil
}

func appendUint16LE(buf []byte, v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return append(buf, b[:]...)
}

func appendUint32LE(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}
