package wire

// ---- General/Handshake ----

type HandshakeRequest struct {
	UserIP  [4]byte
	DataPort uint16
	CmdPort  uint16
	IMUPort  uint16
}

func (HandshakeRequest) CommandSet() CommandSet { return CommandSetGeneral }
func (HandshakeRequest) CommandID() CommandID   { return GeneralHandshake }

type HandshakeResponse struct {
	RetCode uint8
}

func (HandshakeResponse) CommandSet() CommandSet { return CommandSetGeneral }
func (HandshakeResponse) CommandID() CommandID   { return GeneralHandshake }

// ---- General/QueryDeviceInformation ----

type QueryDeviceInformationRequest struct{}

func (QueryDeviceInformationRequest) CommandSet() CommandSet { return CommandSetGeneral }
func (QueryDeviceInformationRequest) CommandID() CommandID   { return GeneralQueryDeviceInformation }

type QueryDeviceInformationResponse struct {
	RetCode uint8
	Version [4]byte
}

func (QueryDeviceInformationResponse) CommandSet() CommandSet { return CommandSetGeneral }
func (QueryDeviceInformationResponse) CommandID() CommandID   { return GeneralQueryDeviceInformation }

// ---- General/Heartbeat ----

type HeartbeatRequest struct{}

func (HeartbeatRequest) CommandSet() CommandSet { return CommandSetGeneral }
func (HeartbeatRequest) CommandID() CommandID   { return GeneralHeartbeat }

type HeartbeatResponse struct {
	RetCode    uint8
	WorkState  uint8
	FeatureMsg uint8
	AckMsg     uint32
}

func (HeartbeatResponse) CommandSet() CommandSet { return CommandSetGeneral }
func (HeartbeatResponse) CommandID() CommandID   { return GeneralHeartbeat }

// ---- General/StartStopSampling ----

type StartStopSamplingRequest struct {
	SampleCtrl uint8
}

func (StartStopSamplingRequest) CommandSet() CommandSet { return CommandSetGeneral }
func (StartStopSamplingRequest) CommandID() CommandID   { return GeneralStartStopSampling }

type StartStopSamplingResponse struct {
	RetCode uint8
}

func (StartStopSamplingResponse) CommandSet() CommandSet { return CommandSetGeneral }
func (StartStopSamplingResponse) CommandID() CommandID   { return GeneralStartStopSampling }

// ---- General/ChangeCoordinateSystem ----

type ChangeCoordinateSystemRequest struct {
	CoordinateType uint8
}

func (ChangeCoordinateSystemRequest) CommandSet() CommandSet { return CommandSetGeneral }
func (ChangeCoordinateSystemRequest) CommandID() CommandID   { return GeneralChangeCoordinateSystem }

type ChangeCoordinateSystemResponse struct {
	RetCode uint8
}

func (ChangeCoordinateSystemResponse) CommandSet() CommandSet { return CommandSetGeneral }
func (ChangeCoordinateSystemResponse) CommandID() CommandID   { return GeneralChangeCoordinateSystem }

// ---- General/Disconnect ----

type DisconnectRequest struct{}

func (DisconnectRequest) CommandSet() CommandSet { return CommandSetGeneral }
func (DisconnectRequest) CommandID() CommandID   { return GeneralDisconnect }

type DisconnectResponse struct {
	RetCode uint8
}

func (DisconnectResponse) CommandSet() CommandSet { return CommandSetGeneral }
func (DisconnectResponse) CommandID() CommandID   { return GeneralDisconnect }

// ---- General/ConfigureStaticDynamicIP ----

type ConfigureStaticDynamicIPRequest struct {
	IPMode  uint8
	IPAddr  [4]byte
	NetMask [4]byte
	GWAddr  [4]byte
}

func (ConfigureStaticDynamicIPRequest) CommandSet() CommandSet { return CommandSetGeneral }
func (ConfigureStaticDynamicIPRequest) CommandID() CommandID   { return GeneralConfigureStaticDynamicIP }

type ConfigureStaticDynamicIPResponse struct {
	RetCode uint8
}

func (ConfigureStaticDynamicIPResponse) CommandSet() CommandSet { return CommandSetGeneral }
func (ConfigureStaticDynamicIPResponse) CommandID() CommandID {
	return GeneralConfigureStaticDynamicIP
}

// ---- General/GetDeviceIPInformation ----

type GetDeviceIPInformationRequest struct{}

func (GetDeviceIPInformationRequest) CommandSet() CommandSet { return CommandSetGeneral }
func (GetDeviceIPInformationRequest) CommandID() CommandID   { return GeneralGetDeviceIPInformation }

type GetDeviceIPInformationResponse struct {
	RetCode uint8
	IPMode  uint8
	IPAddr  [4]byte
	NetMask [4]byte
	GWAddr  [4]byte
}

func (GetDeviceIPInformationResponse) CommandSet() CommandSet { return CommandSetGeneral }
func (GetDeviceIPInformationResponse) CommandID() CommandID   { return GeneralGetDeviceIPInformation }

// ---- General/RebootDevice ----

type RebootDeviceRequest struct {
	Timeout uint16
}

func (RebootDeviceRequest) CommandSet() CommandSet { return CommandSetGeneral }
func (RebootDeviceRequest) CommandID() CommandID   { return GeneralRebootDevice }

type RebootDeviceResponse struct {
	RetCode uint8
}

func (RebootDeviceResponse) CommandSet() CommandSet { return CommandSetGeneral }
func (RebootDeviceResponse) CommandID() CommandID   { return GeneralRebootDevice }

// ---- General messages (cmd_type=Message only) ----

// BroadcastMessage is emitted by the sensor on the discovery port.
type BroadcastMessage struct {
	BroadcastCode [16]byte
	DevType       uint8
	Reserved      uint16
}

func (BroadcastMessage) CommandSet() CommandSet { return CommandSetGeneral }
func (BroadcastMessage) CommandID() CommandID   { return GeneralBroadcastMessage }

// PushAbnormalStatusInformation is an unsolicited message the sensor may
// emit on the command channel carrying a raw status code.
type PushAbnormalStatusInformation struct {
	StatusCode uint32
}

func (PushAbnormalStatusInformation) CommandSet() CommandSet { return CommandSetGeneral }
func (PushAbnormalStatusInformation) CommandID() CommandID {
	return GeneralPushAbnormalStatusInformation
}
