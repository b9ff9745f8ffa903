package terrain

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Chunk blobs are zstd-compressed little-endian uint16 block ids in
// storage order. The same bytes go to disk and over the wire.

var (
	blobEnc, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	blobDec, _ = zstd.NewReader(nil)
)

func (c *Chunk) MarshalBlob() []byte {
	raw := make([]byte, len(c.Blocks)*2)
	for i, v := range c.Blocks {
		off := i * 2
		raw[off] = byte(v)
		raw[off+1] = byte(v >> 8)
	}
	return blobEnc.EncodeAll(raw, nil)
}

func ChunkFromBlob(blob []byte) (*Chunk, error) {
	raw, err := blobDec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress chunk blob: %w", err)
	}
	if len(raw) != BlocksPerChunk*2 {
		return nil, fmt.Errorf("chunk blob has %d bytes, want %d", len(raw), BlocksPerChunk*2)
	}
	c := NewChunk()
	for i := range c.Blocks {
		off := i * 2
		c.Blocks[i] = uint16(raw[off]) | uint16(raw[off+1])<<8
	}
	return c, nil
}
