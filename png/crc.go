package png

import "hash/crc32"

// Checksum returns the CRC-32 (ISO 3309 / ITU-T V.42, as used by PNG) of
// the concatenation of parts.
func Checksum(parts ...[]byte) uint32 {
	var crc uint32
	for _, p := range parts {
		crc = crc32.Update(crc, crc32.IEEETable, p)
	}
	return crc
}
