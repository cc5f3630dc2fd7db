package embcache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var errEmptyEntry = errors.New("empty cache entry")

// encodeVector packs v as little-endian float32 words.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 0, len(v)*4)
	for _, f := range v {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data) == 0 {
		return nil, errEmptyEntry
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("cache entry length %d is not a multiple of 4", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
