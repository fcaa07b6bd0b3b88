package milimg

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
)

// RasterCodec converts between encoded raster images (PNG and friends) and
// raw pixel frames. It sits at the outer edge of both pipelines: the decode
// path ends with EncodeRaster, the encode path begins with DecodeRaster.
type RasterCodec interface {
	EncodeRaster(frame *image.NRGBA) ([]byte, error)
	DecodeRaster(data []byte) (*image.NRGBA, error)
}

// PNGRaster decodes any raster format the imaging package recognizes
// (PNG, JPEG, GIF, TIFF, BMP) and always encodes to PNG, the only output
// format that preserves the alpha channel losslessly.
type PNGRaster struct{}

func (PNGRaster) EncodeRaster(frame *image.NRGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, frame, imaging.PNG); err != nil {
		return nil, &CodecError{Op: "png encode", Cause: err}
	}
	return buf.Bytes(), nil
}

func (PNGRaster) DecodeRaster(data []byte) (*image.NRGBA, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &CodecError{Op: "raster decode", Cause: err}
	}
	return toNRGBA(img), nil
}
