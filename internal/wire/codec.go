package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// EncodeBody serializes any fixed-size little-endian variant struct using
// encoding/binary's struct reflection. Every request/response/message
// struct in this package qualifies, which is what lets a single encode
// path stand in for forty hand-written serializers.
func EncodeBody(v any) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
		return nil, fmt.Errorf("wire: encode body: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeBody deserializes data into v, which must be a pointer to one of
// this package's variant structs.
func DecodeBody(data []byte, v any) error {
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, v); err != nil {
		return fmt.Errorf("wire: decode body: %w", err)
	}
	return nil
}

type requestFactory func() RequestBody
type responseFactory func() ResponseBody
type messageFactory func() MessageBody

var requestTable = map[CommandSet]map[CommandID]requestFactory{
	CommandSetGeneral: {
		GeneralHandshake:              func() RequestBody { return &HandshakeRequest{} },
		GeneralQueryDeviceInformation: func() RequestBody { return &QueryDeviceInformationRequest{} },
		GeneralHeartbeat:              func() RequestBody { return &HeartbeatRequest{} },
		GeneralStartStopSampling:      func() RequestBody { return &StartStopSamplingRequest{} },
		GeneralChangeCoordinateSystem: func() RequestBody { return &ChangeCoordinateSystemRequest{} },
		GeneralDisconnect:             func() RequestBody { return &DisconnectRequest{} },
		GeneralConfigureStaticDynamicIP: func() RequestBody {
			return &ConfigureStaticDynamicIPRequest{}
		},
		GeneralGetDeviceIPInformation: func() RequestBody { return &GetDeviceIPInformationRequest{} },
		GeneralRebootDevice:           func() RequestBody { return &RebootDeviceRequest{} },
	},
	CommandSetLiDAR: {
		LiDARSetMode: func() RequestBody { return &SetModeRequest{} },
		LiDARWriteExtrinsicParameters: func() RequestBody {
			return &WriteExtrinsicParametersRequest{}
		},
		LiDARReadExtrinsicParameters: func() RequestBody { return &ReadExtrinsicParametersRequest{} },
		LiDARTurnOnOffRainFogSuppression: func() RequestBody {
			return &TurnOnOffRainFogSuppressionRequest{}
		},
		LiDARSetTurnOnOffFan:       func() RequestBody { return &SetTurnOnOffFanRequest{} },
		LiDARGetTurnOnOffFanState:  func() RequestBody { return &GetTurnOnOffFanStateRequest{} },
		LiDARSetReturnMode:         func() RequestBody { return &SetReturnModeRequest{} },
		LiDARGetReturnMode:         func() RequestBody { return &GetReturnModeRequest{} },
		LiDARSetIMUDataPushFrequency: func() RequestBody {
			return &SetIMUDataPushFrequencyRequest{}
		},
		LiDARGetIMUDataPushFrequency: func() RequestBody {
			return &GetIMUDataPushFrequencyRequest{}
		},
		LiDARUpdateUTCSynchronizeTime: func() RequestBody {
			return &UpdateUTCSynchronizeTimeRequest{}
		},
	},
}

var responseTable = map[CommandSet]map[CommandID]responseFactory{
	CommandSetGeneral: {
		GeneralHandshake:              func() ResponseBody { return &HandshakeResponse{} },
		GeneralQueryDeviceInformation: func() ResponseBody { return &QueryDeviceInformationResponse{} },
		GeneralHeartbeat:              func() ResponseBody { return &HeartbeatResponse{} },
		GeneralStartStopSampling:      func() ResponseBody { return &StartStopSamplingResponse{} },
		GeneralChangeCoordinateSystem: func() ResponseBody { return &ChangeCoordinateSystemResponse{} },
		GeneralDisconnect:             func() ResponseBody { return &DisconnectResponse{} },
		GeneralConfigureStaticDynamicIP: func() ResponseBody {
			return &ConfigureStaticDynamicIPResponse{}
		},
		GeneralGetDeviceIPInformation: func() ResponseBody { return &GetDeviceIPInformationResponse{} },
		GeneralRebootDevice:           func() ResponseBody { return &RebootDeviceResponse{} },
	},
	CommandSetLiDAR: {
		LiDARSetMode: func() ResponseBody { return &SetModeResponse{} },
		LiDARWriteExtrinsicParameters: func() ResponseBody {
			return &WriteExtrinsicParametersResponse{}
		},
		LiDARReadExtrinsicParameters: func() ResponseBody { return &ReadExtrinsicParametersResponse{} },
		LiDARTurnOnOffRainFogSuppression: func() ResponseBody {
			return &TurnOnOffRainFogSuppressionResponse{}
		},
		LiDARSetTurnOnOffFan:      func() ResponseBody { return &SetTurnOnOffFanResponse{} },
		LiDARGetTurnOnOffFanState: func() ResponseBody { return &GetTurnOnOffFanStateResponse{} },
		LiDARSetReturnMode:        func() ResponseBody { return &SetReturnModeResponse{} },
		LiDARGetReturnMode:        func() ResponseBody { return &GetReturnModeResponse{} },
		LiDARSetIMUDataPushFrequency: func() ResponseBody {
			return &SetIMUDataPushFrequencyResponse{}
		},
		LiDARGetIMUDataPushFrequency: func() ResponseBody {
			return &GetIMUDataPushFrequencyResponse{}
		},
		LiDARUpdateUTCSynchronizeTime: func() ResponseBody {
			return &UpdateUTCSynchronizeTimeResponse{}
		},
	},
}

var messageTable = map[CommandSet]map[CommandID]messageFactory{
	CommandSetGeneral: {
		GeneralBroadcastMessage: func() MessageBody { return &BroadcastMessage{} },
		GeneralPushAbnormalStatusInformation: func() MessageBody {
			return &PushAbnormalStatusInformation{}
		},
	},
}

// KnownCommandSet reports whether set has any registered variants at all.
// cmd_set=Hub is a reserved discriminant with no decodable variants, so
// it is never "known" here even though it is a legal wire value.
func KnownCommandSet(set CommandSet) bool {
	return set == CommandSetGeneral || set == CommandSetLiDAR
}

// NewRequest, NewResponse, and NewMessage return a zero-value pointer
// instance for (set, id), ready to be filled in by DecodeBody, or
// ok=false if the pair is not in the variant catalogue.
func NewRequest(set CommandSet, id CommandID) (RequestBody, bool) {
	f, ok := requestTable[set][id]
	if !ok {
		return nil, false
	}
	return f(), true
}

func NewResponse(set CommandSet, id CommandID) (ResponseBody, bool) {
	f, ok := responseTable[set][id]
	if !ok {
		return nil, false
	}
	return f(), true
}

func NewMessage(set CommandSet, id CommandID) (MessageBody, bool) {
	f, ok := messageTable[set][id]
	if !ok {
		return nil, false
	}
	return f(), true
}
