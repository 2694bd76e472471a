package cellcodec

import (
	"bytes"
	"errors"
	"testing"
)

func TestRenderScanRoundTrip(t *testing.T) {
	codec := NewQRCodec()
	buf := make([]byte, 120)
	for i := range buf {
		buf[i] = byte(i * 7)
	}

	img, err := codec.Render(buf, 10, "M")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(img, []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatalf("render did not produce a PNG image")
	}

	got, err := codec.Scan(img)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if !bytes.Equal(got, buf) {
		t.Errorf("scanned buffer differs from rendered buffer")
	}
}

func TestRenderRejectsUnknownECLevel(t *testing.T) {
	codec := NewQRCodec()
	if _, err := codec.Render([]byte("x"), 10, "Z"); err == nil {
		t.Errorf("unknown error correction level should be rejected")
	}
}

func TestScanGarbageImage(t *testing.T) {
	codec := NewQRCodec()
	_, err := codec.Scan([]byte("not an image at all"))
	if err == nil {
		t.Fatalf("expected scan error")
	}
	var scanErr *ScanError
	if !errors.As(err, &scanErr) {
		t.Errorf("expected *ScanError, got %T", err)
	}
}
