package handlers

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/Brownie44l1/harvest/internal/model"
)

func uniformImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.05
}

func TestPreprocessImageNHWC(t *testing.T) {
	img := uniformImage(10, 6, color.RGBA{R: 255, A: 255})

	data, err := preprocessImage(img, model.ImageSpec{Size: 4, Layout: model.LayoutNHWC})
	if err != nil {
		t.Fatalf("preprocessImage: %v", err)
	}
	if len(data) != 4*4*3 {
		t.Fatalf("len = %d", len(data))
	}
	for i := 0; i < len(data); i += 3 {
		if !near(data[i], 1) || !near(data[i+1], -1) || !near(data[i+2], -1) {
			t.Fatalf("pixel %d = %v", i/3, data[i:i+3])
		}
	}
}

func TestPreprocessImageNCHW(t *testing.T) {
	img := uniformImage(5, 5, color.RGBA{G: 255, A: 255})

	data, err := preprocessImage(img, model.ImageSpec{Size: 3, Layout: model.LayoutNCHW})
	if err != nil {
		t.Fatalf("preprocessImage: %v", err)
	}
	plane := 9
	for i := 0; i < plane; i++ {
		if !near(data[i], -1) || !near(data[plane+i], 1) || !near(data[2*plane+i], -1) {
			t.Fatalf("pixel %d = %v %v %v", i, data[i], data[plane+i], data[2*plane+i])
		}
	}
}

func TestPreprocessImageRequiresSize(t *testing.T) {
	if _, err := preprocessImage(uniformImage(2, 2, color.RGBA{A: 255}), model.ImageSpec{}); err == nil {
		t.Fatal("expected error without a model size")
	}
}

func TestCropSquareKeepsCentre(t *testing.T) {
	img := uniformImage(6, 2, color.RGBA{B: 255, A: 255})
	img.SetRGBA(2, 0, color.RGBA{R: 255, A: 255})
	img.SetRGBA(3, 0, color.RGBA{R: 255, A: 255})
	img.SetRGBA(2, 1, color.RGBA{R: 255, A: 255})
	img.SetRGBA(3, 1, color.RGBA{R: 255, A: 255})

	out := cropSquare(img)
	b := out.Bounds()
	if b.Dx() != 2 || b.Dy() != 2 {
		t.Fatalf("bounds = %v", b)
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, _, bl, _ := out.At(x, y).RGBA()
			if r>>8 != 255 || bl != 0 {
				t.Fatalf("pixel (%d,%d) is not from the centre", x, y)
			}
		}
	}
}
