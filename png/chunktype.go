package png

import "fmt"

// ChunkType is the 4-byte chunk type code. Bit 5 (the ASCII case bit) of
// each byte carries a property of the chunk.
type ChunkType [4]byte

const caseBit = 1 << 5

// ChunkTypeFromBytes returns the chunk type made of b. Every byte must be
// an ASCII letter; the reserved bit is not checked here, see IsValid.
func ChunkTypeFromBytes(b [4]byte) (ChunkType, error) {
	for i, c := range b {
		if !isLetter(c) {
			return ChunkType{}, fmt.Errorf("%w: byte %d is 0x%02x", ErrInvalidCharacter, i, c)
		}
	}
	return ChunkType(b), nil
}

// ParseChunkType parses a chunk type such as "IHDR" or "ruSt".
func ParseChunkType(s string) (ChunkType, error) {
	if len(s) != 4 {
		return ChunkType{}, fmt.Errorf("%w: %q has %d bytes", ErrInvalidLength, s, len(s))
	}
	var b [4]byte
	copy(b[:], s)
	return ChunkTypeFromBytes(b)
}

func isLetter(c byte) bool {
	return ('A' <= c && c <= 'Z') || ('a' <= c && c <= 'z')
}

// Bytes returns the raw type code.
func (t ChunkType) Bytes() [4]byte {
	return t
}

func (t ChunkType) String() string {
	return string(t[:])
}

// IsValid reports whether t is a conforming chunk type: four letters with
// the reserved bit clear.
func (t ChunkType) IsValid() bool {
	for _, c := range t {
		if !isLetter(c) {
			return false
		}
	}
	return t.IsReservedBitValid()
}

// IsCritical reports whether the chunk is needed to display the image
// (uppercase first letter). Ancillary chunks have a lowercase one.
func (t ChunkType) IsCritical() bool {
	return t[0]&caseBit == 0
}

// IsPublic reports whether the type is defined by the PNG specification
// or registered (uppercase second letter).
func (t ChunkType) IsPublic() bool {
	return t[1]&caseBit == 0
}

func (t ChunkType) IsReservedBitValid() bool {
	return t[2]&caseBit == 0
}

// IsSafeToCopy reports whether editors that do not recognize the chunk
// may copy it regardless of image changes (lowercase fourth letter).
func (t ChunkType) IsSafeToCopy() bool {
	return t[3]&caseBit != 0
}

// MarshalText implements encoding.TextMarshaler.
func (t ChunkType) MarshalText() ([]byte, error) {
	return t[:], nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ChunkType) UnmarshalText(text []byte) error {
	ct, err := ParseChunkType(string(text))
	if err != nil {
		return err
	}
	*t = ct
	return nil
}
