package wire

// LiDARStatusCode is the 32-bit status bitfield carried in every point
// cloud frame header. Fields are packed most-significant-bit first.
//
// The vendor documentation's field list sums to 31 of the 32 bits
// (reserved is documented as 13 bits); we treat that as a documentation
// slip and widen reserved to 14 bits so the layout is exactly 32 bits
// wide without disturbing any named field's position. See DESIGN.md.
type LiDARStatusCode uint32

const (
	lscTempStatusShift      = 30
	lscVoltStatusShift      = 28
	lscMotorStatusShift     = 26
	lscDirtyWarnShift       = 24
	lscFirmwareStatusShift  = 23
	lscPPSStatusShift       = 22
	lscDeviceStatusShift    = 21
	lscFanStatusShift       = 20
	lscSelfHeatingShift     = 19
	lscPTPStatusShift       = 18
	lscTimeSyncStatusShift  = 16
	lscSystemStatusShift    = 0
)

func (c LiDARStatusCode) field(shift uint, bits uint) uint32 {
	mask := uint32(1)<<bits - 1
	return (uint32(c) >> shift) & mask
}

func (c LiDARStatusCode) TempStatus() uint32     { return c.field(lscTempStatusShift, 2) }
func (c LiDARStatusCode) VoltStatus() uint32     { return c.field(lscVoltStatusShift, 2) }
func (c LiDARStatusCode) MotorStatus() uint32    { return c.field(lscMotorStatusShift, 2) }
func (c LiDARStatusCode) DirtyWarn() uint32      { return c.field(lscDirtyWarnShift, 2) }
func (c LiDARStatusCode) FirmwareStatus() uint32 { return c.field(lscFirmwareStatusShift, 1) }
func (c LiDARStatusCode) PPSStatus() uint32      { return c.field(lscPPSStatusShift, 1) }
func (c LiDARStatusCode) DeviceStatus() uint32   { return c.field(lscDeviceStatusShift, 1) }
func (c LiDARStatusCode) FanStatus() uint32      { return c.field(lscFanStatusShift, 1) }
func (c LiDARStatusCode) SelfHeating() uint32    { return c.field(lscSelfHeatingShift, 1) }
func (c LiDARStatusCode) PTPStatus() uint32      { return c.field(lscPTPStatusShift, 1) }
func (c LiDARStatusCode) TimeSyncStatus() uint32 { return c.field(lscTimeSyncStatusShift, 2) }
func (c LiDARStatusCode) SystemStatus() uint32   { return c.field(lscSystemStatusShift, 2) }

// TagInfo is the 8-bit per-point tag bitfield, most-significant-bit
// first: space(2), strength(2), return_count(2), near_distortion(2).
type TagInfo uint8

func (t TagInfo) Space() uint8          { return uint8(t>>6) & 0x3 }
func (t TagInfo) Strength() uint8       { return uint8(t>>4) & 0x3 }
func (t TagInfo) ReturnCount() uint8    { return uint8(t>>2) & 0x3 }
func (t TagInfo) NearDistortion() uint8 { return uint8(t) & 0x3 }
