package embcache

import (
	"math"
	"testing"
)

func TestCodec_RoundTrip(t *testing.T) {
	in := []float32{-1.5, 0, 3.25, float32(math.Inf(1))}
	data := encodeVector(in)
	if len(data) != 16 {
		t.Fatalf("len = %d", len(data))
	}
	out, err := decodeVector(data)
	if err != nil {
		t.Fatal(err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestDecodeVector_Rejects(t *testing.T) {
	for _, data := range [][]byte{nil, {}, {1}, {1, 2, 3, 4, 5}} {
		if _, err := decodeVector(data); err == nil {
			t.Errorf("decodeVector(%v) must fail", data)
		}
	}
}
