// Package wire defines the typed request, response, and message variants
// of the Mid-70 control protocol, their fixed little-endian byte layouts,
// and the two-level (command set, command id) dispatch table that the
// frame codec uses to encode and decode them generically.
//
// Every variant body is a plain struct of fixed-size little-endian
// fields (uint8/16/32, int32, float32, byte arrays). That uniformity lets
// a single pair of encode/decode functions (see EncodeBody/DecodeBody in
// codec.go) serve all of them through encoding/binary's struct
// reflection, rather than forty hand-written (de)serializers.
package wire

// CommandType is the outer cmd_type discriminator of a control frame.
type CommandType uint8

const (
	CommandTypeRequest  CommandType = 0
	CommandTypeResponse CommandType = 1
	CommandTypeMessage  CommandType = 2
)

func (t CommandType) String() string {
	switch t {
	case CommandTypeRequest:
		return "Request"
	case CommandTypeResponse:
		return "Response"
	case CommandTypeMessage:
		return "Message"
	default:
		return "Unknown"
	}
}

// CommandSet is the first payload byte: the command namespace.
type CommandSet uint8

const (
	CommandSetGeneral CommandSet = 0
	CommandSetLiDAR   CommandSet = 1
	CommandSetHub     CommandSet = 2 // reserved, never decoded
)

func (s CommandSet) String() string {
	switch s {
	case CommandSetGeneral:
		return "General"
	case CommandSetLiDAR:
		return "LiDAR"
	case CommandSetHub:
		return "Hub"
	default:
		return "Unknown"
	}
}

// CommandID is the second payload byte: the variant selector within a
// command set.
type CommandID uint8

// General command set ids.
const (
	GeneralBroadcastMessage              CommandID = 0x00
	GeneralHandshake                     CommandID = 0x01
	GeneralQueryDeviceInformation        CommandID = 0x02
	GeneralHeartbeat                     CommandID = 0x03
	GeneralStartStopSampling             CommandID = 0x04
	GeneralChangeCoordinateSystem        CommandID = 0x05
	GeneralDisconnect                    CommandID = 0x06
	GeneralPushAbnormalStatusInformation CommandID = 0x07
	GeneralConfigureStaticDynamicIP      CommandID = 0x08
	GeneralGetDeviceIPInformation        CommandID = 0x09
	GeneralRebootDevice                  CommandID = 0x0A
)

// LiDAR command set ids.
const (
	LiDARSetMode                     CommandID = 0x00
	LiDARWriteExtrinsicParameters    CommandID = 0x01
	LiDARReadExtrinsicParameters     CommandID = 0x02
	LiDARTurnOnOffRainFogSuppression CommandID = 0x03
	LiDARSetTurnOnOffFan             CommandID = 0x04
	LiDARGetTurnOnOffFanState        CommandID = 0x05
	LiDARSetReturnMode               CommandID = 0x06
	LiDARGetReturnMode               CommandID = 0x07
	LiDARSetIMUDataPushFrequency     CommandID = 0x08
	LiDARGetIMUDataPushFrequency     CommandID = 0x09
	LiDARUpdateUTCSynchronizeTime    CommandID = 0x0A
)

// DeviceType identifies the sensor model announced in a broadcast
// message. Only Mid70 is a supported protocol target; everything else is
// still usable for the command/response plumbing but its feature-specific
// commands are undefined.
type DeviceType uint8

const (
	DeviceTypeMid70         DeviceType = 6
	DeviceTypeNotImplemented DeviceType = 255
)

func ParseDeviceType(raw uint8) DeviceType {
	if raw == uint8(DeviceTypeMid70) {
		return DeviceTypeMid70
	}
	return DeviceTypeNotImplemented
}

func (d DeviceType) String() string {
	switch d {
	case DeviceTypeMid70:
		return "Mid70"
	default:
		return "NotImplemented"
	}
}

// RequestBody is implemented by every cmd_type=Request payload struct.
type RequestBody interface {
	CommandSet() CommandSet
	CommandID() CommandID
}

// ResponseBody is implemented by every cmd_type=Response payload struct.
type ResponseBody interface {
	CommandSet() CommandSet
	CommandID() CommandID
}

// MessageBody is implemented by every cmd_type=Message payload struct
// (only General/BroadcastMessage and General/PushAbnormalStatusInformation
// today).
type MessageBody interface {
	CommandSet() CommandSet
	CommandID() CommandID
}
