package oto

import (
	"encoding/binary"
	"math"

	"github.com/moonlighter/moonlighter"
)

// FloatBufferToBytes converts a buffer to float32 little-endian bytes, the
// sample format the oto context is opened with. Samples outside [-1, 1] are
// clamped. The bytes are appended to dst, which may be nil.
func FloatBufferToBytes(buff moonlighter.AudioBuffer, dst []byte) []byte {
	for _, v := range buff {
		if v < -1.0 {
			v = -1.0
		} else if v > 1.0 {
			v = 1.0
		}
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}
