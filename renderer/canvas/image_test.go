package canvasrenderer

import (
	"image"
	"math"
	"testing"

	"github.com/ByLCY/checkpress/layout"
)

func solid(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

func TestFitImageContainCentres(t *testing.T) {
	p, ok := fitImage(solid(100, 50), 40, 40, layout.FitContain)
	if !ok {
		t.Fatalf("expected image to be placed")
	}
	// 100px → 40mm，高 50px → 20mm，纵向居中
	if math.Abs(p.dpmm-2.5) > 1e-9 || math.Abs(p.offY-10) > 1e-9 || math.Abs(p.offX) > 1e-9 {
		t.Fatalf("unexpected contain placement: %+v", p)
	}
}

func TestFitImageCoverCrops(t *testing.T) {
	p, ok := fitImage(solid(100, 50), 40, 40, layout.FitCover)
	if !ok {
		t.Fatalf("expected image to be placed")
	}
	if got := p.img.Bounds(); got.Dx() != 50 || got.Dy() != 50 {
		t.Fatalf("expected centred 50x50 crop, got %v", got)
	}
	if math.Abs(float64(p.img.Bounds().Dx())/p.dpmm-40) > 1e-9 {
		t.Fatalf("cover must fill the box width, dpmm=%g", p.dpmm)
	}
}

func TestFitImageStretchMatchesBoxAspect(t *testing.T) {
	p, ok := fitImage(solid(100, 50), 80, 20, layout.FitStretch)
	if !ok {
		t.Fatalf("expected image to be placed")
	}
	b := p.img.Bounds()
	if b.Dx() != 100 || b.Dy() != 25 {
		t.Fatalf("expected 100x25 resample, got %v", b)
	}
}

func TestFitImageEmptyBox(t *testing.T) {
	if _, ok := fitImage(solid(10, 10), 0, 10, layout.FitStretch); ok {
		t.Fatalf("zero-width box must be skipped")
	}
}

func TestWithOpacityScalesAlpha(t *testing.T) {
	out := withOpacity(solid(2, 2), 0.5)
	_, _, _, a := out.At(0, 0).RGBA()
	got := float64(a) / 0xffff
	if math.Abs(got-0.5) > 0.01 {
		t.Fatalf("expected alpha ≈ 0.5, got %g", got)
	}
	src := solid(1, 1)
	if withOpacity(src, 1) != src {
		t.Fatalf("full opacity must return the source image")
	}
}
