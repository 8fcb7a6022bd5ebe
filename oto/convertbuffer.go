package oto

import (
	"encoding/binary"
	"math"
)

// FloatBufferToFloat32LE appends the samples of buff to out as 32-bit
// little-endian floats, clamped to [-1, 1], and returns the extended slice.
func FloatBufferToFloat32LE(buff []float32, out []byte) []byte {
	for _, v := range buff {
		v = max(-1, min(1, v))
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}
