package pngme

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ysh86/pngme/png"
)

func chunk(t *testing.T, typ string, data []byte) *png.Chunk {
	t.Helper()
	ct, err := png.ParseChunkType(typ)
	if err != nil {
		t.Fatalf("ParseChunkType(%q): %v", typ, err)
	}
	return png.NewChunk(ct, data)
}

// writeTestPNG writes a 1x1 image and returns its path.
func writeTestPNG(t *testing.T) string {
	t.Helper()
	f := png.FromChunks([]*png.Chunk{
		chunk(t, "IHDR", []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 6, 0, 0, 0}),
		chunk(t, "IDAT", []byte{0x78, 0x9c, 0x63, 0x60, 0x00, 0x02, 0x00, 0x00, 0x05, 0x00, 0x01}),
		chunk(t, "IEND", nil),
	})
	path := filepath.Join(t.TempDir(), "test.png")
	if err := os.WriteFile(path, f.Bytes(), 0600); err != nil {
		t.Fatalf("writing test file: %v", err)
	}
	return path
}

func TestEncodeDecode(t *testing.T) {
	path := writeTestPNG(t)

	if err := Encode(path, "ruSt", "hidden message", ""); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	msg, err := Decode(path, "ruSt")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if msg != "hidden message" {
		t.Errorf("expected %q, got %q", "hidden message", msg)
	}

	chunks, err := List(path)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(chunks) != 4 || chunks[3].Type().String() != "ruSt" {
		t.Errorf("expected ruSt appended after IEND, got %v", chunks)
	}
}

func TestEncodeToOutput(t *testing.T) {
	path := writeTestPNG(t)
	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(filepath.Dir(path), "out.png")

	if err := Encode(path, "ruSt", "to another file", output); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(after, original) {
		t.Error("input file was modified")
	}
	if msg, err := Decode(output, "ruSt"); err != nil || msg != "to another file" {
		t.Errorf("Decode(output) = %q, %v", msg, err)
	}
}

func TestEncodeRejectsBadTypes(t *testing.T) {
	path := writeTestPNG(t)
	tests := []struct {
		typ     string
		wantErr error
	}{
		{typ: "rust", wantErr: ErrReservedBit},
		{typ: "ru5t", wantErr: png.ErrInvalidCharacter},
		{typ: "rusty", wantErr: png.ErrInvalidLength},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			if err := Encode(path, tt.typ, "x", ""); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	chunks, err := List(path)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(chunks) != 3 {
		t.Errorf("file changed by rejected encodes: %d chunks", len(chunks))
	}
}

func TestEncodeBytesAndDecodeBinary(t *testing.T) {
	path := writeTestPNG(t)
	if err := EncodeBytes(path, "biNa", []byte{0xff, 0x00, 0xfe}, ""); err != nil {
		t.Fatalf("EncodeBytes: %v", err)
	}
	if _, err := Decode(path, "biNa"); !errors.Is(err, png.ErrInvalidUTF8) {
		t.Errorf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestDecodeNotFound(t *testing.T) {
	path := writeTestPNG(t)
	if _, err := Decode(path, "ruSt"); !errors.Is(err, png.ErrChunkNotFound) {
		t.Errorf("expected ErrChunkNotFound, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	path := writeTestPNG(t)
	for _, msg := range []string{"first", "second"} {
		if err := Encode(path, "ruSt", msg, ""); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	c, err := Remove(path, "ruSt")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if string(c.Data()) != "first" {
		t.Errorf("removed %q, want first", c.Data())
	}
	if msg, err := Decode(path, "ruSt"); err != nil || msg != "second" {
		t.Errorf("Decode after remove = %q, %v", msg, err)
	}

	if _, err := Remove(path, "ruSt"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := Remove(path, "ruSt"); !errors.Is(err, png.ErrChunkNotFound) {
		t.Errorf("expected ErrChunkNotFound, got %v", err)
	}
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()

	notPNG := filepath.Join(dir, "not.png")
	if err := os.WriteFile(notPNG, []byte("GIF89a, honestly"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(notPNG); !errors.Is(err, png.ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.png")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestWriteFileKeepsMode(t *testing.T) {
	path := writeTestPNG(t)
	if err := os.Chmod(path, 0640); err != nil {
		t.Fatal(err)
	}
	if err := Encode(path, "ruSt", "x", ""); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	stat, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if stat.Mode().Perm() != 0640 {
		t.Errorf("expected mode 0640, got %o", stat.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".pngme-") {
			t.Errorf("temporary file %s left behind", e.Name())
		}
	}
}

func TestPrint(t *testing.T) {
	path := writeTestPNG(t)
	if err := Encode(path, "ruSt", "hello", ""); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var buf bytes.Buffer
	if err := Print(&buf, path); err != nil {
		t.Fatalf("Print: %v", err)
	}
	want := []string{
		"chunk 'IHDR' (13 bytes): Width = 1, Height = 1, Bit depth = 8, Color type = 6, Compression method = 0, Filter method = 0, Interlace method = 0",
		"chunk 'IDAT' (11 bytes)",
		"chunk 'IEND' (0 bytes)",
		`chunk 'ruSt' (5 bytes): "hello"`,
	}
	got := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %q", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSummary(t *testing.T) {
	long := strings.Repeat("a", 100)
	tests := []struct {
		name string
		c    *png.Chunk
		want string
	}{
		{name: "text", c: chunk(t, "ruSt", []byte("hi")), want: `"hi"`},
		{name: "long text", c: chunk(t, "ruSt", []byte(long)), want: `"` + long[:60] + `..."`},
		{name: "binary", c: chunk(t, "ruSt", []byte{0xff}), want: "<binary>"},
		{name: "critical", c: chunk(t, "IDAT", []byte("xx")), want: ""},
		{name: "empty", c: chunk(t, "ruSt", nil), want: ""},
		{name: "srgb", c: chunk(t, "sRGB", []byte{0}), want: "Rendering intent = 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summary(tt.c); got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFlags(t *testing.T) {
	tests := map[string]string{
		"IHDR": "critical,public,unsafe-to-copy",
		"ruSt": "ancillary,private,safe-to-copy",
		"Rust": "critical,private,reserved,safe-to-copy",
	}
	for typ, want := range tests {
		ct, err := png.ParseChunkType(typ)
		if err != nil {
			t.Fatal(err)
		}
		if got := Flags(ct); got != want {
			t.Errorf("Flags(%s) = %q, want %q", typ, got, want)
		}
	}
}
