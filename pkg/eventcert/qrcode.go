package eventcert

import (
	"fmt"
	"image"

	"github.com/skip2/go-qrcode"
)

const (
	// Logical px of the square QR code
	QRCodeSize   = 64
	qrCodeMargin = 16
)

// GenerateQRCode encodes link as a square image of size pixels.
func GenerateQRCode(link string, size int) (image.Image, error) {
	q, err := qrcode.New(link, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return q.Image(size), nil
}
