// Package pngme hides messages in PNG files by storing them in chunks of
// their own.
package pngme

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ysh86/pngme/png"
)

// ErrReservedBit is returned when asked to write a chunk whose type has
// the reserved bit set; such a file would not conform to PNG.
var ErrReservedBit = errors.New("chunk type has the reserved bit set")

// ReadFile decodes the PNG file at path.
func ReadFile(path string) (*png.File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	f, err := png.NewFile(io.NewSectionReader(file, 0, stat.Size()))
	if err != nil {
		return nil, err
	}
	if err := f.Parse(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// WriteFile encodes f to path. The data goes to a temporary file in the
// same directory first and replaces path only once it is complete.
func WriteFile(path string, f *png.File) error {
	mode := os.FileMode(0644)
	if stat, err := os.Stat(path); err == nil {
		mode = stat.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".pngme-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ParseWritableType parses chunkType and rejects types that may not be
// written to a file.
func ParseWritableType(chunkType string) (png.ChunkType, error) {
	t, err := png.ParseChunkType(chunkType)
	if err != nil {
		return t, err
	}
	if !t.IsValid() {
		return t, fmt.Errorf("%w: %s", ErrReservedBit, t)
	}
	return t, nil
}

// Encode appends a chunk holding message to the PNG at path. The result
// is written to output, or back to path when output is empty.
func Encode(path, chunkType, message, output string) error {
	return EncodeBytes(path, chunkType, []byte(message), output)
}

// EncodeBytes is Encode for a payload that need not be text.
func EncodeBytes(path, chunkType string, payload []byte, output string) error {
	t, err := ParseWritableType(chunkType)
	if err != nil {
		return err
	}
	f, err := ReadFile(path)
	if err != nil {
		return err
	}
	f.AppendChunk(png.NewChunk(t, payload))

	if output == "" {
		output = path
	}
	return WriteFile(output, f)
}

// Decode returns the message stored in the first chunk of the given type.
func Decode(path, chunkType string) (string, error) {
	t, err := png.ParseChunkType(chunkType)
	if err != nil {
		return "", err
	}
	f, err := ReadFile(path)
	if err != nil {
		return "", err
	}
	c := f.ChunkByType(t.String())
	if c == nil {
		return "", fmt.Errorf("%s: %w: %s", path, png.ErrChunkNotFound, t)
	}
	return c.DataString()
}

// Remove deletes the first chunk of the given type from the PNG at path
// and returns it.
func Remove(path, chunkType string) (*png.Chunk, error) {
	t, err := png.ParseChunkType(chunkType)
	if err != nil {
		return nil, err
	}
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := f.RemoveChunk(t.String())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := WriteFile(path, f); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns the chunks of the PNG at path in file order.
func List(path string) ([]*png.Chunk, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return f.Chunks(), nil
}

// Print writes one line per chunk of the PNG at path to w.
func Print(w io.Writer, path string) error {
	chunks, err := List(path)
	if err != nil {
		return err
	}
	for _, c := range chunks {
		fmt.Fprintf(w, "chunk '%s' (%d bytes)", c.Type(), c.Length())
		if s := Summary(c); s != "" {
			fmt.Fprintf(w, ": %s", s)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// Summary describes the data of c in one line: the decoded fields of a
// well-known chunk, the text of an ancillary chunk, or nothing.
func Summary(c *png.Chunk) string {
	if s := c.Describe(); s != "" {
		return s
	}
	if c.Type().IsCritical() || c.Length() == 0 {
		return ""
	}
	s, err := c.DataString()
	if err != nil {
		return "<binary>"
	}
	const limit = 60
	if r := []rune(s); len(r) > limit {
		s = string(r[:limit]) + "..."
	}
	return fmt.Sprintf("%q", s)
}

// Flags lists the properties encoded in the letter case of t.
func Flags(t png.ChunkType) string {
	flags := "ancillary"
	if t.IsCritical() {
		flags = "critical"
	}
	if t.IsPublic() {
		flags += ",public"
	} else {
		flags += ",private"
	}
	if !t.IsReservedBitValid() {
		flags += ",reserved"
	}
	if t.IsSafeToCopy() {
		flags += ",safe-to-copy"
	} else {
		flags += ",unsafe-to-copy"
	}
	return flags
}
