package quill

import (
	"fmt"

	"github.com/Neumenon/quill/compress/zlib"
)

// Compressor is a pluggable byte-transform applied to the assembled
// payload region during encode and inverted before decode. The
// reserved offset region never passes through the transform.
//
// Implementations live under compress/: zlib (the default), lz4, and
// snappy. The engine validates levels against Levels before doing any
// encode work, and a stream the transform rejects on decode surfaces
// as ErrCompressionFailure; the zlib and lz4 transforms carry headers
// and checksums, so decoding an untransformed payload as a
// transformed one fails instead of silently misreading. Only that
// compressed/uncompressed distinction is detectable: the level shapes
// the encoder's effort, not the stream format, so any level of the
// same transform decodes a stream produced at any other level and
// yields the identical payload.
type Compressor interface {
	// Compress transforms data at the given level.
	Compress(data []byte, level int) ([]byte, error)

	// Uncompress inverts the transform. The level is recoverable from
	// the stream itself and is not needed here.
	Uncompress(data []byte) ([]byte, error)

	// Levels returns the inclusive bounds of supported levels.
	Levels() (min, max int)
}

var defaultCompressor Compressor = zlib.Compressor{}

func checkLevel(c Compressor, level int) error {
	min, max := c.Levels()
	if level < min || level > max {
		return fmt.Errorf("%w: %d (supported %d..%d)", ErrInvalidCompressionLevel, level, min, max)
	}
	return nil
}

// compressPayload replaces buf's payload region (everything past
// offset) with its transform, keeping the reserved region zeroed.
func compressPayload(c Compressor, level int, buf []byte, offset int) ([]byte, error) {
	packed, err := c.Compress(buf[offset:], level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompressionFailure, err)
	}
	out := make([]byte, offset+len(packed))
	copy(out[offset:], packed)
	return out, nil
}

// decodePayload strips the reserved region and, when a level is in
// effect, inverts the transform on what remains.
func decodePayload(c Compressor, level int, data []byte, offset int) ([]byte, error) {
	if offset < 0 {
		return nil, fmt.Errorf("quill: negative offset %d", offset)
	}
	if len(data) < offset {
		return nil, fmt.Errorf("%w: buffer of %d bytes is shorter than offset %d",
			ErrBufferTruncated, len(data), offset)
	}
	payload := data[offset:]
	if level == 0 {
		return payload, nil
	}
	raw, err := c.Uncompress(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompressionFailure, err)
	}
	return raw, nil
}
