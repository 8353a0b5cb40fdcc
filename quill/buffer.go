package quill

import (
	"encoding/binary"
	"fmt"
	"math"
)

// All multi-byte wire formats are little-endian. This is a fixed
// portability contract shared by encode and decode, never a per-call
// choice.

// ============================================================
// Writer
// ============================================================

// writer appends primitive wire formats to a pre-sized byte region at
// an advancing cursor. Sizes and ranges are validated by measure
// before any byte is written, so writer methods do not fail.
type writer struct {
	buf []byte
	off int
}

func (w *writer) putU8(v uint8) {
	w.buf[w.off] = v
	w.off++
}

func (w *writer) putU16(v uint16) {
	binary.LittleEndian.PutUint16(w.buf[w.off:], v)
	w.off += 2
}

func (w *writer) putU32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[w.off:], v)
	w.off += 4
}

func (w *writer) putU64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[w.off:], v)
	w.off += 8
}

// putUint writes an unsigned integer of the given byte width. Signed
// values pass through the same path two's-complement truncated, so a
// matching-width read restores them exactly.
func (w *writer) putUint(v uint64, width int) {
	switch width {
	case 1:
		w.putU8(uint8(v))
	case 2:
		w.putU16(uint16(v))
	case 4:
		w.putU32(uint32(v))
	case 8:
		w.putU64(v)
	}
}

func (w *writer) putF32(v float64) {
	w.putU32(math.Float32bits(float32(v)))
}

func (w *writer) putF64(v float64) {
	w.putU64(math.Float64bits(v))
}

func (w *writer) putF24(v float64) {
	bits := packFloat24(v)
	w.buf[w.off] = byte(bits)
	w.buf[w.off+1] = byte(bits >> 8)
	w.buf[w.off+2] = byte(bits >> 16)
	w.off += 3
}

func (w *writer) putStr(s string) {
	copy(w.buf[w.off:], s)
	w.off += len(s)
}

// putStrFixed writes s into exactly length bytes, NUL-padding short
// values and truncating long ones.
func (w *writer) putStrFixed(s string, length int) {
	if len(s) > length {
		s = s[:length]
	}
	copy(w.buf[w.off:], s)
	for i := len(s); i < length; i++ {
		w.buf[w.off+i] = 0
	}
	w.off += length
}

// ============================================================
// Reader
// ============================================================

// reader consumes primitive wire formats from a byte region at an
// advancing cursor. Every read checks remaining length first and
// reports ErrBufferTruncated when the region is exhausted early.
type reader struct {
	buf []byte
	off int
}

func (r *reader) remaining() int {
	return len(r.buf) - r.off
}

func (r *reader) need(n int) error {
	if r.remaining() < n {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrBufferTruncated, n, r.off, r.remaining())
	}
	return nil
}

func (r *reader) u8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

func (r *reader) u16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) u64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v, nil
}

// uint reads an unsigned integer of the given byte width.
func (r *reader) uint(width int) (uint64, error) {
	switch width {
	case 1:
		v, err := r.u8()
		return uint64(v), err
	case 2:
		v, err := r.u16()
		return uint64(v), err
	case 4:
		v, err := r.u32()
		return uint64(v), err
	default:
		return r.u64()
	}
}

// int reads a signed integer of the given byte width, sign-extending
// the two's-complement wire value.
func (r *reader) int(width int) (int64, error) {
	v, err := r.uint(width)
	if err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return int64(int8(v)), nil
	case 2:
		return int64(int16(v)), nil
	case 4:
		return int64(int32(v)), nil
	default:
		return int64(v), nil
	}
}

func (r *reader) f32() (float64, error) {
	v, err := r.u32()
	if err != nil {
		return 0, err
	}
	return float64(math.Float32frombits(v)), nil
}

func (r *reader) f64() (float64, error) {
	v, err := r.u64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

func (r *reader) f24() (float64, error) {
	if err := r.need(3); err != nil {
		return 0, err
	}
	bits := uint32(r.buf[r.off]) | uint32(r.buf[r.off+1])<<8 | uint32(r.buf[r.off+2])<<16
	r.off += 3
	return unpackFloat24(bits), nil
}

func (r *reader) str(n int) (string, error) {
	if err := r.need(n); err != nil {
		return "", err
	}
	s := string(r.buf[r.off : r.off+n])
	r.off += n
	return s, nil
}

// strNT reads bytes up to and including the next NUL terminator.
func (r *reader) strNT() (string, error) {
	for i := r.off; i < len(r.buf); i++ {
		if r.buf[i] == 0 {
			s := string(r.buf[r.off:i])
			r.off = i + 1
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unterminated string at offset %d", ErrBufferTruncated, r.off)
}

// ============================================================
// Float24
// ============================================================

// Float24 bit layout, after assembling the three wire bytes
// little-endian into a uint32:
//
//	bit 23     sign
//	bits 16-22 exponent, bias 63 (0 = zero, 127 = Inf/NaN)
//	bits 0-15  mantissa (implicit leading 1 for normal values)

const (
	f24ExpBias = 63
	f24ExpMax  = 0x7F
	f24ManBits = 16
)

// packFloat24 rounds a float64 to the nearest Float24 value. Exponent
// overflow becomes ±Inf and underflow flushes to ±0; subnormals are
// not produced.
func packFloat24(f float64) uint32 {
	var sign uint32
	if math.Signbit(f) {
		sign = 1 << 23
	}
	switch {
	case math.IsNaN(f):
		return sign | f24ExpMax<<f24ManBits | 1
	case math.IsInf(f, 0):
		return sign | f24ExpMax<<f24ManBits
	case f == 0:
		return sign
	}

	frac, exp2 := math.Frexp(math.Abs(f))
	// frac is in [0.5, 1); normalize to 1.m × 2^e with e = exp2-1.
	e := exp2 - 1
	man := int64(math.Round((frac*2 - 1) * (1 << f24ManBits)))
	if man == 1<<f24ManBits {
		// Rounded up to 2.0: renormalize.
		man = 0
		e++
	}

	stored := e + f24ExpBias
	if stored >= f24ExpMax {
		return sign | f24ExpMax<<f24ManBits
	}
	if stored < 1 {
		return sign
	}
	return sign | uint32(stored)<<f24ManBits | uint32(man)
}

// unpackFloat24 expands a Float24 bit pattern to float64. Every value
// it returns packs back to the same bit pattern.
func unpackFloat24(bits uint32) float64 {
	neg := bits&(1<<23) != 0
	stored := int(bits >> f24ManBits & f24ExpMax)
	man := float64(bits & (1<<f24ManBits - 1))

	var v float64
	switch {
	case stored == f24ExpMax:
		if bits&(1<<f24ManBits-1) != 0 {
			return math.NaN()
		}
		v = math.Inf(1)
	case stored == 0:
		v = 0
	default:
		v = math.Ldexp(1+man/(1<<f24ManBits), stored-f24ExpBias)
	}
	if neg {
		v = -v
	}
	return v
}
