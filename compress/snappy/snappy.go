// Package snappy adapts the snappy block format to the quill
// Compressor interface. Snappy has no tunable levels, so the only
// accepted level is 1.
package snappy

import (
	"github.com/golang/snappy"
)

// Compressor implements the quill Compressor interface.
type Compressor struct{}

// Levels returns snappy's single level.
func (Compressor) Levels() (min, max int) {
	return 1, 1
}

// Compress encodes data as a snappy block.
func (Compressor) Compress(data []byte, _ int) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

// Uncompress decodes a snappy block.
func (Compressor) Uncompress(data []byte) ([]byte, error) {
	return snappy.Decode(nil, data)
}
