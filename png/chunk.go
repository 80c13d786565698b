package png

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	bst "github.com/mixcode/binarystruct"
)

// MaxChunkLength is the largest data length PNG allows in a chunk.
const MaxChunkLength = 1<<31 - 1

// chunk = length, type, data, CRC
const chunkOverhead = 4 + 4 + 4

// Chunk is a single PNG chunk. Its length is always len(data) and its CRC
// always covers type and data.
type Chunk struct {
	typ  ChunkType
	data []byte
	crc  uint32
}

// chunkHeader is the part of a chunk in front of the data.
// Value is stored in big-endian.
type chunkHeader struct {
	Length int    `binary:"uint32"`
	Type   string `binary:"[4]byte"`
}

// NewChunk builds a chunk of type t carrying a copy of data.
func NewChunk(t ChunkType, data []byte) *Chunk {
	d := make([]byte, len(data))
	copy(d, data)
	return &Chunk{typ: t, data: d, crc: Checksum(t[:], d)}
}

// ReadChunk decodes one chunk from the front of r. The type must be made of
// letters and the stored CRC must match the one computed from type and data.
func ReadChunk(r io.Reader) (*Chunk, error) {
	var h chunkHeader
	if _, err := bst.Read(r, bst.BigEndian, &h); err != nil {
		return nil, truncated("header", err)
	}
	if h.Length < 0 || h.Length > MaxChunkLength {
		return nil, fmt.Errorf("%w: %d", ErrChunkTooLarge, uint32(h.Length))
	}

	var raw [4]byte
	copy(raw[:], h.Type)
	typ, err := ChunkTypeFromBytes(raw)
	if err != nil {
		return nil, err
	}

	// grow with the input instead of trusting the declared length
	data, err := io.ReadAll(io.LimitReader(r, int64(h.Length)))
	if err != nil {
		return nil, err
	}
	if len(data) < h.Length {
		return nil, fmt.Errorf("%w: %s declares %d bytes, %d available", ErrTruncated, typ, h.Length, len(data))
	}

	var crc uint32
	if err := binary.Read(r, binary.BigEndian, &crc); err != nil {
		return nil, truncated("crc of "+typ.String(), err)
	}

	c := &Chunk{typ: typ, data: data, crc: Checksum(raw[:], data)}
	if c.crc != crc {
		return nil, fmt.Errorf("%w: %s stored %08x, computed %08x", ErrChecksumMismatch, typ, crc, c.crc)
	}
	return c, nil
}

// ParseChunk decodes b, which must hold exactly one chunk.
func ParseChunk(b []byte) (*Chunk, error) {
	if len(b) < chunkOverhead {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(b))
	}
	declared := int64(binary.BigEndian.Uint32(b))
	if expected := int64(len(b) - chunkOverhead); declared != expected {
		return nil, fmt.Errorf("%w: expected %d, found %d", ErrLengthMismatch, expected, declared)
	}
	return ReadChunk(bytes.NewReader(b))
}

func truncated(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s", ErrTruncated, what)
	}
	return err
}

// Length returns the number of data bytes.
func (c *Chunk) Length() uint32 {
	return uint32(len(c.data))
}

func (c *Chunk) Type() ChunkType {
	return c.typ
}

// Data returns the chunk data. It must not be modified.
func (c *Chunk) Data() []byte {
	return c.data
}

func (c *Chunk) CRC() uint32 {
	return c.crc
}

// DataString returns the data as text.
func (c *Chunk) DataString() (string, error) {
	if !utf8.Valid(c.data) {
		return "", fmt.Errorf("%w: %s", ErrInvalidUTF8, c.typ)
	}
	return string(c.data), nil
}

// WriteTo writes the encoded chunk to w.
func (c *Chunk) WriteTo(w io.Writer) (int64, error) {
	n, err := bst.Write(w, bst.BigEndian, chunkHeader{Length: len(c.data), Type: c.typ.String()})
	total := int64(n)
	if err != nil {
		return total, err
	}

	n, err = w.Write(c.data)
	total += int64(n)
	if err != nil {
		return total, err
	}

	var crc [4]byte
	binary.BigEndian.PutUint32(crc[:], c.crc)
	n, err = w.Write(crc[:])
	total += int64(n)
	return total, err
}

// Bytes returns the encoded chunk: length, type, data and CRC.
func (c *Chunk) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(chunkOverhead + len(c.data))
	c.WriteTo(&buf)
	return buf.Bytes()
}

// String makes Chunk satisfy the Stringer interface.
func (c *Chunk) String() string {
	data, err := c.DataString()
	if err != nil {
		data = "<invalid UTF-8>"
	}
	return fmt.Sprintf("{ length: %4d, type: %s, data: %s, crc: %10d }", c.Length(), c.typ, data, c.crc)
}

// Describe summarizes the data of well-known chunks. It returns an empty
// string for chunk types it does not know.
func (c *Chunk) Describe() string {
	d := c.data
	switch c.typ.String() {
	case "IHDR":
		if len(d) != 13 {
			return "corrupted!"
		}
		return fmt.Sprintf("Width = %d, Height = %d, Bit depth = %d, Color type = %d, Compression method = %d, Filter method = %d, Interlace method = %d",
			binary.BigEndian.Uint32(d[0:]), binary.BigEndian.Uint32(d[4:]), d[8], d[9], d[10], d[11], d[12])
	case "sRGB":
		if len(d) != 1 {
			return "corrupted!"
		}
		return fmt.Sprintf("Rendering intent = %d", d[0])
	case "tEXt":
		keyword, text, ok := bytes.Cut(d, []byte{0})
		if !ok || len(keyword) == 0 {
			return "corrupted!"
		}
		return fmt.Sprintf("%s = %q", keyword, text)
	}
	return ""
}
