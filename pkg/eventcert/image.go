package eventcert

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"golang.org/x/image/draw"
)

// Images are resampled at this many pixels per logical px so they stay sharp in print.
const imageDensity = 2

func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// ResizeImage scales img to exactly width x height pixels.
func ResizeImage(img image.Image, width, height int) image.Image {
	if b := img.Bounds(); b.Dx() == width && b.Dy() == height {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// fitBox resamples img to cover a box of wPx x hPx logical px.
func fitBox(img image.Image, wPx, hPx float64) image.Image {
	w := max(int(math.Ceil(wPx*imageDensity)), 1)
	h := max(int(math.Ceil(hPx*imageDensity)), 1)
	return ResizeImage(img, w, h)
}
