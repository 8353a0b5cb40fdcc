// Package lz4 adapts the pierrec lz4 frame format to the quill
// Compressor interface. lz4 trades some ratio for very fast
// decompression, which suits frequent small state-sync payloads; the
// frame header and checksum make stream corruption detectable on
// Uncompress.
package lz4

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"
)

// levels maps the engine's 1..9 range onto the lz4 frame levels.
var levels = [...]lz4.CompressionLevel{
	lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4, lz4.Level5,
	lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

// Compressor implements the quill Compressor interface over lz4
// frame levels 1 (fastest) through 9 (best compression).
type Compressor struct{}

// Levels returns the lz4 level bounds.
func (Compressor) Levels() (min, max int) {
	return 1, len(levels)
}

// Compress frames data at the given level.
func (Compressor) Compress(data []byte, level int) ([]byte, error) {
	res := bytes.NewBuffer(nil)
	w := lz4.NewWriter(res)
	if err := w.Apply(lz4.CompressionLevelOption(levels[level-1])); err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return res.Bytes(), nil
}

// Uncompress unframes data.
func (Compressor) Uncompress(data []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
}
