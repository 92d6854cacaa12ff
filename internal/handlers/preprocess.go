package handlers

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/nfnt/resize"

	"github.com/Brownie44l1/harvest/internal/model"
)

// preprocessImage centre-crops img to a square, resizes it to the model size
// and scales each channel to [-1, 1] the way MobileNetV2 was trained.
func preprocessImage(img image.Image, spec model.ImageSpec) ([]float32, error) {
	if spec.Size <= 0 {
		return nil, fmt.Errorf("model image size is not configured")
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("image has no pixels")
	}

	size := spec.Size
	resized := resize.Resize(uint(size), uint(size), cropSquare(img), resize.Lanczos3)
	rb := resized.Bounds()

	channels := 3
	inputData := make([]float32, channels*size*size)
	plane := size * size

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := resized.At(rb.Min.X+x, rb.Min.Y+y).RGBA()
			rgb := [3]float32{
				float32(r>>8)/127.5 - 1,
				float32(g>>8)/127.5 - 1,
				float32(b>>8)/127.5 - 1,
			}

			pixelIndex := y*size + x
			for c := 0; c < channels; c++ {
				if spec.Layout == model.LayoutNCHW {
					inputData[c*plane+pixelIndex] = rgb[c]
				} else {
					inputData[pixelIndex*channels+c] = rgb[c]
				}
			}
		}
	}

	return inputData, nil
}

// cropSquare keeps the centred square of img, discarding the excess of the
// longer side.
func cropSquare(img image.Image) image.Image {
	b := img.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	if b.Dx() == b.Dy() {
		return img
	}

	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2

	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(dst, dst.Bounds(), img, image.Pt(x0, y0), draw.Src)
	return dst
}
