package png

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidCharacter = errors.New("invalid chunk type character")
	ErrInvalidLength    = errors.New("invalid chunk type length")
	ErrTruncated        = errors.New("truncated chunk")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrChunkNotFound    = errors.New("chunk not found")
	ErrInvalidUTF8      = errors.New("chunk data is not valid UTF-8")
	ErrChunkTooLarge    = errors.New("chunk length exceeds 2^31-1")
	ErrLengthMismatch   = errors.New("chunk length field does not match data")
)

// ChunkError records which chunk of a file failed to decode.
type ChunkError struct {
	Index  int   // position of the chunk in the file
	Offset int64 // byte offset of the chunk's length field
	Err    error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d at %08x: %v", e.Index, e.Offset, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}
