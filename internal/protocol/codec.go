package protocol

import (
	"encoding/base64"

	"voxelgate.dev/internal/sim/terrain"
)

// EncodeBlocks renders a chunk payload for ADD_CHUNK: base64 over the
// compressed block blob.
func EncodeBlocks(c *terrain.Chunk) string {
	return base64.StdEncoding.EncodeToString(c.MarshalBlob())
}

func DecodeBlocks(s string) (*terrain.Chunk, error) {
	blob, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return terrain.ChunkFromBlob(blob)
}
