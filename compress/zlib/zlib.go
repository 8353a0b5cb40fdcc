// Package zlib adapts the klauspost zlib implementation to the quill
// Compressor interface. This is the engine's default transform: the
// stream carries a header and an Adler-32 checksum, so a payload that
// was never compressed (or was corrupted in transit) is rejected on
// Uncompress instead of being misread.
package zlib

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Compressor implements the quill Compressor interface over zlib
// levels 1 (fastest) through 9 (best compression).
type Compressor struct{}

// Levels returns the zlib level bounds.
func (Compressor) Levels() (min, max int) {
	return zlib.BestSpeed, zlib.BestCompression
}

// Compress deflates data at the given level.
func (Compressor) Compress(data []byte, level int) ([]byte, error) {
	res := bytes.NewBuffer(nil)
	w, err := zlib.NewWriterLevel(res, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	// Close flushes the final block and the checksum; without it the
	// stream is unreadable.
	if err := w.Close(); err != nil {
		return nil, err
	}
	return res.Bytes(), nil
}

// Uncompress inflates data.
func (Compressor) Uncompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.Close()
	}()
	return io.ReadAll(r)
}
