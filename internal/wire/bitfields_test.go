package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagInfoFields(t *testing.T) {
	// space=1(01), strength=2(10), return_count=3(11), near_distortion=0(00)
	// MSB-first: 01 10 11 00 = 0x6C
	tag := TagInfo(0x6C)
	assert.Equal(t, uint8(1), tag.Space())
	assert.Equal(t, uint8(2), tag.Strength())
	assert.Equal(t, uint8(3), tag.ReturnCount())
	assert.Equal(t, uint8(0), tag.NearDistortion())
}

func TestLiDARStatusCodeFields(t *testing.T) {
	// system_status occupies bits 1-0, set to 3 (11).
	var code LiDARStatusCode = 0x00000003
	assert.Equal(t, uint32(3), code.SystemStatus())
	assert.Equal(t, uint32(0), code.TempStatus())

	// temp_status occupies bits 31-30, set to 2 (10).
	code = LiDARStatusCode(uint32(2) << 30)
	assert.Equal(t, uint32(2), code.TempStatus())
	assert.Equal(t, uint32(0), code.SystemStatus())
}
