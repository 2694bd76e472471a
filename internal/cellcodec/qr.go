package cellcodec

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	qrcode "github.com/skip2/go-qrcode"
)

// QRCodec implements Codec using QR symbols. Wire buffers are base64
// encoded into the QR text payload so the symbol only ever carries
// printable bytes; binary QR modes survive scanner charset guessing
// poorly.
type QRCodec struct{}

// NewQRCodec returns a QR-backed cell codec.
func NewQRCodec() *QRCodec { return &QRCodec{} }

// Render encodes buf into a PNG QR image. version is the density hint
// (1-40, larger means more capacity) and only influences the rendered
// pixel size; the symbol version itself is chosen by the encoder to fit
// the data. ecLevel is one of L, M, Q, H.
func (c *QRCodec) Render(buf []byte, version int, ecLevel string) ([]byte, error) {
	text := base64.RawStdEncoding.EncodeToString(buf)

	level, err := recoveryLevel(ecLevel)
	if err != nil {
		return nil, err
	}

	if version < 1 || version > 40 {
		version = 40
	}
	// 4px per module, module count per side grows 4 per version, plus
	// the quiet zone.
	px := 4 * (17 + 4*version + 8)

	png, err := qrcode.Encode(text, level, px)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR image: %w", err)
	}
	return png, nil
}

// Scan decodes a cell image back into the wire buffer it carries. Any
// failure to locate, decode, or base64-parse the symbol comes back as a
// *ScanError.
func (c *QRCodec) Scan(imageData []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, &ScanError{Err: fmt.Errorf("image decode: %w", err)}
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, &ScanError{Err: err}
	}

	result, err := zxqr.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return nil, &ScanError{Err: err}
	}

	buf, err := base64.RawStdEncoding.DecodeString(result.GetText())
	if err != nil {
		return nil, &ScanError{Err: fmt.Errorf("payload is not base64: %w", err)}
	}
	return buf, nil
}

func recoveryLevel(ecLevel string) (qrcode.RecoveryLevel, error) {
	switch ecLevel {
	case "L":
		return qrcode.Low, nil
	case "M":
		return qrcode.Medium, nil
	case "Q":
		return qrcode.High, nil
	case "H", "":
		return qrcode.Highest, nil
	default:
		return 0, fmt.Errorf("unknown error correction level %q, want L, M, Q or H", ecLevel)
	}
}
