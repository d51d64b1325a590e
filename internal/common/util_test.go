package common

import (
	"testing"
)

// ---------- GenerateRandByteArray ----------

func TestGenerateRandByteArray_Basic(t *testing.T) {
	const size = 32
	data1 := GenerateRandByteArray(size)
	data2 := GenerateRandByteArray(size)

	if len(data1) != size || len(data2) != size {
		t.Fatalf("expected length %d, got %d and %d", size, len(data1), len(data2))
	}
	if string(data1) == string(data2) {
		t.Logf("warning: two GenerateRandByteArray(%d) results are identical; extremely unlikely", size)
	}
}

// ---------- WipeByteArray ----------

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilIsNoop(t *testing.T) {
	WipeByteArray(nil) // must not panic
}
