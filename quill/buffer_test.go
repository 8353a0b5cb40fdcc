package quill

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReader_Primitives(t *testing.T) {
	buf := make([]byte, 64)
	w := &writer{buf: buf}
	w.putU8(0xAB)
	w.putU16(0x1234)
	w.putU32(0xDEADBEEF)
	w.putU64(0x0102030405060708)
	w.putF32(1.5)
	w.putF64(-2.25)
	w.putStr("hi")

	// Little-endian byte order is the portability contract.
	assert.Equal(t, []byte{0xAB, 0x34, 0x12, 0xEF, 0xBE, 0xAD, 0xDE}, buf[:7])

	r := &reader{buf: buf[:w.off]}
	u8, err := r.u8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAB), u8)
	u16, err := r.u16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), u16)
	u32, err := r.u32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), u32)
	u64, err := r.u64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), u64)
	f32, err := r.f32()
	require.NoError(t, err)
	assert.Equal(t, 1.5, f32)
	f64, err := r.f64()
	require.NoError(t, err)
	assert.Equal(t, -2.25, f64)
	s, err := r.str(2)
	require.NoError(t, err)
	assert.Equal(t, "hi", s)
	assert.Zero(t, r.remaining())
}

func TestReader_Truncation(t *testing.T) {
	r := &reader{buf: []byte{1, 2, 3}}
	_, err := r.u32()
	assert.ErrorIs(t, err, ErrBufferTruncated)

	r = &reader{buf: []byte{'a', 'b'}}
	_, err = r.strNT()
	assert.ErrorIs(t, err, ErrBufferTruncated)
}

func TestReader_SignExtension(t *testing.T) {
	tests := []struct {
		width int
		value int64
	}{
		{1, -1}, {2, -300}, {4, -70000}, {8, -5000000000},
	}

	buf := make([]byte, 15)
	w := &writer{buf: buf}
	for _, tt := range tests {
		w.putUint(uint64(tt.value), tt.width)
	}

	r := &reader{buf: buf}
	for _, tt := range tests {
		got, err := r.int(tt.width)
		require.NoError(t, err)
		assert.Equal(t, tt.value, got, "width %d", tt.width)
	}
}

func TestFloat24_ExactValues(t *testing.T) {
	// Values whose mantissa fits in 16 bits survive unchanged.
	exact := []float64{
		0, 1, -1, 0.5, 1.5, -2.25, 0.15625, 1024, -4096, 0.0009765625,
	}
	for _, f := range exact {
		got := unpackFloat24(packFloat24(f))
		assert.Equal(t, f, got, "value %v", f)
	}
}

func TestFloat24_Reduction(t *testing.T) {
	// The reduced form is stable: decode then re-encode is identity
	// on the bit pattern, even when the original value lost precision.
	values := []float64{
		math.Pi, -math.E, 1.0000001, 123456.789, 1e-9, 0.1,
	}
	for _, f := range values {
		bits := packFloat24(f)
		reduced := unpackFloat24(bits)
		assert.Equal(t, bits, packFloat24(reduced), "value %v", f)

		// Relative error is bounded by the 16-bit mantissa.
		if reduced != 0 {
			relErr := math.Abs(reduced-f) / math.Abs(f)
			assert.Less(t, relErr, 1.0/65536, "value %v", f)
		}
	}
}

func TestFloat24_SpecialValues(t *testing.T) {
	assert.True(t, math.IsInf(unpackFloat24(packFloat24(math.Inf(1))), 1))
	assert.True(t, math.IsInf(unpackFloat24(packFloat24(math.Inf(-1))), -1))
	assert.True(t, math.IsNaN(unpackFloat24(packFloat24(math.NaN()))))

	// Exponent overflow saturates to infinity.
	assert.True(t, math.IsInf(unpackFloat24(packFloat24(1e30)), 1))
	assert.True(t, math.IsInf(unpackFloat24(packFloat24(-1e30)), -1))

	// Underflow flushes to signed zero.
	assert.Equal(t, 0.0, unpackFloat24(packFloat24(1e-30)))
	assert.True(t, math.Signbit(unpackFloat24(packFloat24(-1e-30))))
}

func TestFloat24_RoundTripThroughEngine(t *testing.T) {
	s, err := Compile(Options{}, Float24())
	require.NoError(t, err)

	buf, err := s.Encode(0, []*Value{Float(1.5)})
	require.NoError(t, err)
	require.Len(t, buf, 3)

	got, err := s.Decode(0, buf)
	require.NoError(t, err)
	f, err := got[0].AsFloat()
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	// Re-encoding the decoded value reproduces the same bytes.
	buf2, err := s.Encode(0, got)
	require.NoError(t, err)
	assert.Equal(t, buf, buf2)
}

func TestStrFixed_PadAndTruncate(t *testing.T) {
	buf := make([]byte, 4)
	w := &writer{buf: buf}
	w.putStrFixed("ab", 4)
	assert.Equal(t, []byte{'a', 'b', 0, 0}, buf)

	w = &writer{buf: buf}
	w.putStrFixed("abcdef", 4)
	assert.Equal(t, []byte("abcd"), buf)
}
