package canvasrenderer

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/ByLCY/checkpress/layout"
)

// placedImage 是按 fit 规则处理后的图片及其在框内的偏移（mm）与分辨率。
type placedImage struct {
	img  image.Image
	offX float64
	offY float64
	dpmm float64
}

// fitImage 将图片适配到 boxW × boxH（mm）的区域，语义与 CSS object-fit 相同：
// stretch 拉伸填满；contain 等比缩放并居中；cover 等比铺满并居中裁剪。
func fitImage(src image.Image, boxW, boxH float64, fit string) (placedImage, bool) {
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 || boxW <= 0 || boxH <= 0 {
		return placedImage{}, false
	}
	iw, ih := float64(b.Dx()), float64(b.Dy())

	switch fit {
	case layout.FitContain:
		s := math.Min(boxW/iw, boxH/ih) // mm per px
		return placedImage{
			img:  src,
			offX: (boxW - iw*s) / 2,
			offY: (boxH - ih*s) / 2,
			dpmm: 1 / s,
		}, true
	case layout.FitCover:
		s := math.Max(boxW/iw, boxH/ih)
		cw := clampPx(boxW/s, b.Dx())
		ch := clampPx(boxH/s, b.Dy())
		x0 := b.Min.X + (b.Dx()-cw)/2
		y0 := b.Min.Y + (b.Dy()-ch)/2
		dst := image.NewNRGBA(image.Rect(0, 0, cw, ch))
		xdraw.Copy(dst, image.Point{}, src, image.Rect(x0, y0, x0+cw, y0+ch), xdraw.Src, nil)
		return placedImage{img: dst, dpmm: float64(cw) / boxW}, true
	default:
		tw := b.Dx()
		th := int(math.Max(1, math.Round(float64(tw)*boxH/boxW)))
		dst := image.NewNRGBA(image.Rect(0, 0, tw, th))
		xdraw.BiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
		return placedImage{img: dst, dpmm: float64(tw) / boxW}, true
	}
}

// withOpacity 按透明度缩放 alpha 通道，opacity >= 1 时原样返回。
func withOpacity(src image.Image, opacity float64) image.Image {
	if opacity >= 1 {
		return src
	}
	if opacity < 0 {
		opacity = 0
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(opacity * 255))})
	xdraw.DrawMask(dst, dst.Bounds(), src, b.Min, mask, image.Point{}, xdraw.Over)
	return dst
}

func clampPx(v float64, limit int) int {
	n := int(math.Round(v))
	if n < 1 {
		n = 1
	}
	if n > limit {
		n = limit
	}
	return n
}
