package snappy

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	c := Compressor{}
	data := bytes.Repeat([]byte("snapshot "), 150)

	packed, err := c.Compress(data, 1)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(data))

	got, err := c.Uncompress(packed)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestLevels(t *testing.T) {
	min, max := Compressor{}.Levels()
	assert.Equal(t, 1, min)
	assert.Equal(t, 1, max)
}

func TestUncompressRejectsGarbage(t *testing.T) {
	_, err := Compressor{}.Uncompress([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	assert.Error(t, err)
}
