// Package cellcodec turns bounded-size byte buffers into scannable cell
// images and back. The conversion core only depends on the Codec
// interface, so the concrete QR implementation can be swapped without
// touching chunking or reassembly.
package cellcodec

import "fmt"

// Codec renders a wire buffer into an image and scans an image back into
// a buffer. Render receives the density (QR version) and error-correction
// hints from the conversion config; both are opaque to the core.
type Codec interface {
	Render(buf []byte, version int, ecLevel string) ([]byte, error)
	Scan(image []byte) ([]byte, error)
}

// ScanError reports that an image yielded no usable buffer. The pipeline
// treats it as "this cell produced nothing" and excludes the image from
// reassembly instead of failing the transfer.
type ScanError struct {
	Err error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("cell scan failed: %v", e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }
