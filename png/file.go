package png

import (
	"bytes"
	"fmt"
	"io"
	"slices"
)

// Signature is the 8-byte header every PNG stream starts with.
var Signature = [8]byte{137, 80, 78, 71, 13, 10, 26, 10}

// File is a PNG stream: the signature followed by an ordered list of chunks.
type File struct {
	chunks []*Chunk

	reader *io.SectionReader
}

func NewFile(sr *io.SectionReader) (*File, error) {
	f := &File{reader: sr}
	return f, nil
}

// Decode parses a whole PNG stream held in b.
func Decode(b []byte) (*File, error) {
	f, err := NewFile(io.NewSectionReader(bytes.NewReader(b), 0, int64(len(b))))
	if err != nil {
		return nil, err
	}
	if err := f.Parse(); err != nil {
		return nil, err
	}
	return f, nil
}

// FromChunks returns a file holding chunks in the given order.
func FromChunks(chunks []*Chunk) *File {
	return &File{chunks: slices.Clone(chunks)}
}

// Parse reads the signature and then chunks until the end of the section.
// The first bad chunk aborts the parse and leaves f without chunks.
func (f *File) Parse() error {
	f.chunks = nil
	if f.reader == nil {
		return fmt.Errorf("%w: no input", ErrInvalidSignature)
	}
	if _, err := f.reader.Seek(0, io.SeekStart); err != nil {
		return err
	}

	signature := make([]byte, len(Signature))
	if _, err := io.ReadFull(f.reader, signature); err != nil || !bytes.Equal(signature, Signature[:]) {
		return ErrInvalidSignature
	}

	var chunks []*Chunk
	size := f.reader.Size()
	offset := int64(len(Signature))
	for offset < size {
		if left := size - offset; left < chunkOverhead {
			return &ChunkError{Index: len(chunks), Offset: offset, Err: fmt.Errorf("%w: %d bytes left", ErrTruncated, left)}
		}
		c, err := ReadChunk(f.reader)
		if err != nil {
			return &ChunkError{Index: len(chunks), Offset: offset, Err: err}
		}
		chunks = append(chunks, c)
		offset += chunkOverhead + int64(len(c.data))
	}

	f.chunks = chunks
	return nil
}

// Chunks returns the chunks in file order. The returned slice is a copy.
func (f *File) Chunks() []*Chunk {
	return slices.Clone(f.chunks)
}

// AppendChunk adds c after the last chunk, IEND included.
func (f *File) AppendChunk(c *Chunk) {
	f.chunks = append(f.chunks, c)
}

// ChunkByType returns the first chunk of the given type, or nil.
func (f *File) ChunkByType(chunkType string) *Chunk {
	if i := f.index(chunkType); i >= 0 {
		return f.chunks[i]
	}
	return nil
}

// RemoveChunk removes the first chunk of the given type and returns it.
// Later chunks of the same type stay in place.
func (f *File) RemoveChunk(chunkType string) (*Chunk, error) {
	i := f.index(chunkType)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrChunkNotFound, chunkType)
	}
	c := f.chunks[i]
	f.chunks = slices.Delete(f.chunks, i, i+1)
	return c, nil
}

func (f *File) index(chunkType string) int {
	return slices.IndexFunc(f.chunks, func(c *Chunk) bool {
		return c.typ.String() == chunkType
	})
}

// WriteTo writes the signature and every chunk to w.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(Signature[:])
	total := int64(n)
	if err != nil {
		return total, err
	}
	for _, c := range f.chunks {
		m, err := c.WriteTo(w)
		total += m
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Bytes returns the encoded file.
func (f *File) Bytes() []byte {
	size := len(Signature)
	for _, c := range f.chunks {
		size += chunkOverhead + len(c.data)
	}
	var buf bytes.Buffer
	buf.Grow(size)
	f.WriteTo(&buf)
	return buf.Bytes()
}

// String makes File satisfy the Stringer interface.
func (f *File) String() string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("PNG: %d chunks\n", len(f.chunks)))
	for i, c := range f.chunks {
		buf.WriteString(fmt.Sprintf("  %3d %s\n", i, c))
	}
	return buf.String()
}
