package quill

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neumenon/quill/compress/lz4"
	"github.com/Neumenon/quill/compress/snappy"
)

func repetitiveValues() []*Value {
	return []*Value{
		Str(strings.Repeat("state sync payload ", 200)),
		List(Int(7), Int(7), Int(7), Int(7), Int(7), Int(7)),
	}
}

func TestStatic_CompressionTransparency(t *testing.T) {
	schema := []TypeNode{String(), Array(Int8())}
	values := repetitiveValues()

	for level := 1; level <= 9; level++ {
		s := mustCompile(t, Options{CompressionLevel: level}, schema...)
		buf, err := s.Encode(0, values)
		require.NoError(t, err, "level %d", level)

		got, err := s.Decode(0, buf)
		require.NoError(t, err, "level %d", level)
		for i := range values {
			assert.True(t, got[i].Equal(values[i]), "level %d value %d", level, i)
		}
	}
}

func TestStatic_CompressionShrinksRepetitivePayloads(t *testing.T) {
	schema := []TypeNode{String(), Array(Int8())}
	values := repetitiveValues()

	raw := mustCompile(t, Options{}, schema...)
	packed := mustCompile(t, Options{CompressionLevel: 6}, schema...)

	rawBuf, err := raw.Encode(0, values)
	require.NoError(t, err)
	packedBuf, err := packed.Encode(0, values)
	require.NoError(t, err)
	assert.Less(t, len(packedBuf), len(rawBuf))
}

func TestStatic_CompressionPreservesOffset(t *testing.T) {
	s := mustCompile(t, Options{CompressionLevel: 3}, String())
	values := []*Value{Str(strings.Repeat("abc", 500))}

	const offset = 8
	buf, err := s.Encode(offset, values)
	require.NoError(t, err)
	for i := 0; i < offset; i++ {
		assert.Zero(t, buf[i], "reserved byte %d", i)
	}

	// Caller header bytes stay outside the transform.
	for i := 0; i < offset; i++ {
		buf[i] = 0xCD
	}
	got, err := s.Decode(offset, buf)
	require.NoError(t, err)
	assert.True(t, got[0].Equal(values[0]))
}

func TestCompile_InvalidCompressionLevel(t *testing.T) {
	for _, level := range []int{-1, 10, 100} {
		_, err := Compile(Options{CompressionLevel: level}, Int8())
		assert.ErrorIs(t, err, ErrInvalidCompressionLevel, "level %d", level)
	}
}

func TestStatic_CompressionMismatchDetected(t *testing.T) {
	raw := mustCompile(t, Options{}, Int32())
	packed := mustCompile(t, Options{CompressionLevel: 5}, Int32())

	// A raw payload is not a zlib stream: the header check fails
	// instead of silently misreading.
	buf, err := raw.Encode(0, []*Value{Int(42)})
	require.NoError(t, err)
	_, err = packed.Decode(0, buf)
	assert.ErrorIs(t, err, ErrCompressionFailure)
}

func TestStatic_CompressionLevelsInterchangeableOnDecode(t *testing.T) {
	// The level shapes encode effort only: a decoder configured at a
	// different level of the same transform reads the stream and
	// yields the identical payload.
	values := repetitiveValues()
	enc := mustCompile(t, Options{CompressionLevel: 3}, String(), Array(Int8()))
	dec := mustCompile(t, Options{CompressionLevel: 5}, String(), Array(Int8()))

	buf, err := enc.Encode(0, values)
	require.NoError(t, err)
	got, err := dec.Decode(0, buf)
	require.NoError(t, err)
	for i := range values {
		assert.True(t, got[i].Equal(values[i]), "value %d", i)
	}
}

func TestStatic_CorruptCompressedStream(t *testing.T) {
	s := mustCompile(t, Options{CompressionLevel: 9}, String())
	buf, err := s.Encode(0, []*Value{Str(strings.Repeat("x", 1000))})
	require.NoError(t, err)

	buf[len(buf)-1] ^= 0xFF
	_, err = s.Decode(0, buf)
	assert.ErrorIs(t, err, ErrCompressionFailure)
}

func TestDynamic_CompressionTransparency(t *testing.T) {
	values := repetitiveValues()
	for level := 0; level <= 9; level++ {
		buf, err := Serialize(level, 4, values)
		require.NoError(t, err, "level %d", level)

		got, err := Deserialize(level, 4, buf)
		require.NoError(t, err, "level %d", level)
		require.Len(t, got, len(values))
		for i := range values {
			assert.True(t, got[i].Equal(values[i]), "level %d value %d", level, i)
		}
	}
}

func TestDynamic_InvalidCompressionLevel(t *testing.T) {
	_, err := Serialize(42, 0, []*Value{Int(1)})
	assert.ErrorIs(t, err, ErrInvalidCompressionLevel)

	_, err = Deserialize(-3, 0, []byte{tagNil})
	assert.ErrorIs(t, err, ErrInvalidCompressionLevel)
}

func TestAlternateCompressors(t *testing.T) {
	values := repetitiveValues()
	schema := []TypeNode{String(), Array(Int8())}

	t.Run("lz4", func(t *testing.T) {
		for level := 1; level <= 9; level++ {
			s := mustCompile(t, Options{CompressionLevel: level, Compressor: lz4.Compressor{}}, schema...)
			buf, err := s.Encode(0, values)
			require.NoError(t, err, "level %d", level)
			got, err := s.Decode(0, buf)
			require.NoError(t, err, "level %d", level)
			assert.True(t, got[0].Equal(values[0]))
		}
	})

	t.Run("snappy", func(t *testing.T) {
		s := mustCompile(t, Options{CompressionLevel: 1, Compressor: snappy.Compressor{}}, schema...)
		buf, err := s.Encode(0, values)
		require.NoError(t, err)
		got, err := s.Decode(0, buf)
		require.NoError(t, err)
		assert.True(t, got[0].Equal(values[0]))

		_, err = Compile(Options{CompressionLevel: 2, Compressor: snappy.Compressor{}}, Int8())
		assert.ErrorIs(t, err, ErrInvalidCompressionLevel)
	})

	t.Run("lz4 dynamic", func(t *testing.T) {
		buf, err := SerializeWith(lz4.Compressor{}, 4, 0, values)
		require.NoError(t, err)
		got, err := DeserializeWith(lz4.Compressor{}, 4, 0, buf)
		require.NoError(t, err)
		assert.True(t, got[1].Equal(values[1]))
	})
}
