package upload

import (
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
)

// Checksum returns the CRC32 (IEEE) of data in the form object storage expects
// for a CRC32 checksum header: base64 of the four big-endian bytes.
func Checksum(data []byte) string {
	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc32.ChecksumIEEE(data))
	return base64.StdEncoding.EncodeToString(sum[:])
}
