package agent

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// MinimapFingerprint hashes the two anchor pixels plus the bounding box of
// an Idle minimap so the request bus (§4.7) can cheaply tell whether two
// ticks still reference the same minimap identity without re-running the
// anchor comparison (§4.2) itself.
type MinimapFingerprint uint64

// Fingerprint computes the fingerprint of an Idle minimap's identity
// fields. Returns 0 for a non-Idle minimap.
func Fingerprint(m Minimap) MinimapFingerprint {
	if m.State != MinimapIdle {
		return 0
	}
	var buf [40]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(m.Bbox.X))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(m.Bbox.Y))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(m.Bbox.W))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(m.Bbox.H))
	buf[16] = m.TopLeftAnchorPixel.B
	buf[17] = m.TopLeftAnchorPixel.G
	buf[18] = m.TopLeftAnchorPixel.R
	buf[19] = m.BottomRightAnchorPixel.B
	buf[20] = m.BottomRightAnchorPixel.G
	buf[21] = m.BottomRightAnchorPixel.R
	binary.LittleEndian.PutUint32(buf[24:28], uint32(m.TopLeftAnchor.X))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(m.TopLeftAnchor.Y))
	binary.LittleEndian.PutUint32(buf[32:36], uint32(m.BottomRightAnchor.X))
	binary.LittleEndian.PutUint32(buf[36:40], uint32(m.BottomRightAnchor.Y))
	return MinimapFingerprint(xxhash.Sum64(buf[:]))
}
