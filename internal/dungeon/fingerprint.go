package dungeon

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a hex BLAKE2b-256 digest of the level dimensions and wall grid.
// Two carvers with the same params produce the same fingerprint after Generate.
func (c *Carver) Fingerprint() string {
	h, _ := blake2b.New256(nil) // nil key never errors

	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:4], uint32(c.Width()))
	binary.LittleEndian.PutUint32(header[4:8], uint32(c.Height()))
	h.Write(header[:])

	// Pack eight tiles per byte, row-major
	row := make([]byte, (c.Width()+7)/8)
	for y := 0; y < c.Height(); y++ {
		clear(row)
		for x := 0; x < c.Width(); x++ {
			if c.IsWall(x, y) {
				row[x/8] |= 1 << (x % 8)
			}
		}
		h.Write(row)
	}

	return hex.EncodeToString(h.Sum(nil))
}
