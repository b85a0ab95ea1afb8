package wasmgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPutUvarintSmall(t *testing.T) {
	assert.Equal(t, []byte{0x00}, putUvarint(nil, 0))
	assert.Equal(t, []byte{0x7f}, putUvarint(nil, 127))
}

func TestPutUvarintMultiByte(t *testing.T) {
	assert.Equal(t, []byte{0xe5, 0x8e, 0x26}, putUvarint(nil, 624485))
}

func TestPutVarintNegative(t *testing.T) {
	assert.Equal(t, []byte{0x7f}, putVarint(nil, -1))
	assert.Equal(t, []byte{0xc0, 0xbb, 0x78}, putVarint(nil, -123456))
}

func TestPutVarintPositive(t *testing.T) {
	assert.Equal(t, []byte{0xe5, 0x8e, 0x26}, putVarint(nil, 624485))
}

func TestUvarintSizeMatchesEncodedLength(t *testing.T) {
	for _, n := range []uint64{0, 1, 127, 128, 16384, 1 << 40} {
		assert.Equal(t, len(putUvarint(nil, n)), uvarintSize(n))
	}
}
