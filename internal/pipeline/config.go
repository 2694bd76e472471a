package pipeline

import (
	"fmt"

	"github.com/qrferry/qrferry/internal/compressor"
)

// Config carries the immutable parameters of one conversion. ChunkSize is
// the compressed-stream slice size, not the cell capacity: the caller must
// leave headroom for the wire header at the chosen QR version. QRVersion
// and ECLevel are opaque hints forwarded to the cell codec.
type Config struct {
	ChunkSize int
	Effort    int
	QRVersion int
	ECLevel   string
}

// DefaultConfig favors maximum compression, dense symbols, and the
// strongest error correction. The chunk size leaves room for the wire
// header and base64 expansion inside a version-40 level-H symbol
// (1273 text bytes).
func DefaultConfig() Config {
	return Config{ChunkSize: 768, Effort: 9, QRVersion: 40, ECLevel: "H"}
}

// FastConfig trades compression ratio and redundancy for speed.
func FastConfig() Config {
	return Config{ChunkSize: 2048, Effort: 3, QRVersion: 20, ECLevel: "L"}
}

// CompactConfig minimizes the number of cells produced.
func CompactConfig() Config {
	return Config{ChunkSize: 2048, Effort: 9, QRVersion: 40, ECLevel: "L"}
}

// RobustConfig favors error recovery: smaller chunks and the strongest
// correction level leave the most redundancy headroom per cell.
func RobustConfig() Config {
	return Config{ChunkSize: 512, Effort: 9, QRVersion: 30, ECLevel: "H"}
}

// Preset returns the named preset config, or an error for unknown names.
func Preset(name string) (Config, error) {
	switch name {
	case "fast":
		return FastConfig(), nil
	case "compact":
		return CompactConfig(), nil
	case "robust":
		return RobustConfig(), nil
	default:
		return Config{}, fmt.Errorf("unknown preset %q, want fast, compact or robust", name)
	}
}

// Validate rejects configs no conversion could honor.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkSize > 10*1024*1024 {
		return fmt.Errorf("chunk size %d exceeds 10MiB limit", c.ChunkSize)
	}
	if c.Effort < compressor.EffortNone || c.Effort > compressor.EffortMax {
		return fmt.Errorf("compression effort must be in [%d,%d], got %d",
			compressor.EffortNone, compressor.EffortMax, c.Effort)
	}
	if c.QRVersion < 1 || c.QRVersion > 40 {
		return fmt.Errorf("QR version must be in [1,40], got %d", c.QRVersion)
	}
	switch c.ECLevel {
	case "L", "M", "Q", "H":
	default:
		return fmt.Errorf("error correction level must be L, M, Q or H, got %q", c.ECLevel)
	}
	return nil
}
