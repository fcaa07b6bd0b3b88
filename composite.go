package milimg

import (
	"image"
	"image/draw"
)

// CombinePlanes merges a decoded color plane and a decoded alpha plane into
// one image. Red, green and blue come from the color plane unchanged; the
// output alpha is the alpha plane's red channel, which is where the encode
// path stores grayscale alpha (the plane codec only understands full-color
// frames). No premultiplication or gamma correction is applied.
//
// Planes with bounds not anchored at (0,0), such as sub-images, are copied
// to a zero-origin frame first.
func CombinePlanes(colorPlane, alphaPlane *image.NRGBA) (*image.NRGBA, error) {
	colorPlane = toNRGBA(colorPlane)
	alphaPlane = toNRGBA(alphaPlane)
	cw, ch := colorPlane.Rect.Dx(), colorPlane.Rect.Dy()
	aw, ah := alphaPlane.Rect.Dx(), alphaPlane.Rect.Dy()
	if cw != aw || ch != ah {
		return nil, &DimensionMismatchError{
			ColorWidth: cw, ColorHeight: ch,
			AlphaWidth: aw, AlphaHeight: ah,
		}
	}

	out := image.NewNRGBA(image.Rect(0, 0, cw, ch))
	for y := 0; y < ch; y++ {
		crow := colorPlane.Pix[y*colorPlane.Stride:]
		arow := alphaPlane.Pix[y*alphaPlane.Stride:]
		orow := out.Pix[y*out.Stride:]
		for x := 0; x < cw; x++ {
			i := x * 4
			orow[i+0] = crow[i+0]
			orow[i+1] = crow[i+1]
			orow[i+2] = crow[i+2]
			orow[i+3] = arow[i+0]
		}
	}
	return out, nil
}

// SplitPlanes is the encode-path inverse of CombinePlanes. The color plane
// keeps the source RGB with alpha forced fully opaque, so the plane codec
// never has to preserve a meaningless alpha channel. The alpha plane carries
// the source alpha duplicated across R, G and B (again with opaque alpha),
// turning it into an ordinary grayscale frame the codec can handle.
//
// A source with bounds not anchored at (0,0) is copied to a zero-origin
// frame first.
func SplitPlanes(src *image.NRGBA) (colorPlane, alphaPlane *image.NRGBA) {
	src = toNRGBA(src)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	colorPlane = image.NewNRGBA(image.Rect(0, 0, w, h))
	alphaPlane = image.NewNRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		srow := src.Pix[y*src.Stride:]
		crow := colorPlane.Pix[y*colorPlane.Stride:]
		arow := alphaPlane.Pix[y*alphaPlane.Stride:]
		for x := 0; x < w; x++ {
			i := x * 4
			crow[i+0] = srow[i+0]
			crow[i+1] = srow[i+1]
			crow[i+2] = srow[i+2]
			crow[i+3] = 0xFF

			a := srow[i+3]
			arow[i+0] = a
			arow[i+1] = a
			arow[i+2] = a
			arow[i+3] = 0xFF
		}
	}
	return colorPlane, alphaPlane
}

// toNRGBA copies any image.Image into an *image.NRGBA with bounds starting
// at (0,0). Images that already have that shape are returned as-is.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
