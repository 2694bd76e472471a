package storage

import (
	"io"
)

// Store is where the CLI puts its artifacts: rendered cell images on
// encode, reconstructed files on decode.
type Store interface {
	// Put stores an artifact under name and returns its full path.
	Put(name string, data io.Reader) (string, error)
	// Get retrieves an artifact by name.
	Get(name string) (io.ReadCloser, error)
	// Path returns the full path an artifact name maps to.
	Path(name string) string
}
