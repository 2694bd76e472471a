package compressor

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// Effort bounds for Compress. EffortNone disables compression entirely and
// the stream must be tagged as uncompressed by the caller so the decoder
// never attempts an inverse transform on it.
const (
	EffortNone = 0
	EffortMax  = 9
)

var levels = [...]lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1, lz4.Level2, lz4.Level3,
	lz4.Level4, lz4.Level5, lz4.Level6,
	lz4.Level7, lz4.Level8, lz4.Level9,
}

// CorruptStreamError reports that a byte stream is not a valid lz4 frame.
// It indicates chunk-level corruption or loss, as opposed to a digest
// mismatch which indicates a changed-but-structurally-valid stream.
type CorruptStreamError struct {
	Err error
}

func (e *CorruptStreamError) Error() string {
	return fmt.Sprintf("corrupt compressed stream: %v", e.Err)
}

func (e *CorruptStreamError) Unwrap() error { return e.Err }

// Compress compresses data as an lz4 frame at the given effort level.
// Effort 0 returns a copy of the input unchanged; efforts 1-9 trade CPU
// time for smaller output.
func Compress(data []byte, effort int) ([]byte, error) {
	if effort < EffortNone || effort > EffortMax {
		return nil, fmt.Errorf("compression effort %d out of range [%d,%d]", effort, EffortNone, EffortMax)
	}
	if effort == EffortNone {
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}

	var buf bytes.Buffer
	writer := lz4.NewWriter(&buf)
	if err := writer.Apply(lz4.CompressionLevelOption(levels[effort])); err != nil {
		return nil, fmt.Errorf("failed to set compression level: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("compression failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("compression failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress for streams produced with effort >= 1.
// Input that is not a valid lz4 frame yields a *CorruptStreamError.
func Decompress(data []byte) ([]byte, error) {
	reader := lz4.NewReader(bytes.NewReader(data))
	var out bytes.Buffer
	if _, err := io.Copy(&out, reader); err != nil {
		return nil, &CorruptStreamError{Err: err}
	}
	return out.Bytes(), nil
}
