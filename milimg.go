// Package milimg reads and writes the milimg still-image container, which
// packs an AV1-compressed color plane and an optional AV1-compressed alpha
// plane behind a small big-endian header. Splitting alpha into its own
// grayscale plane lets a plain color codec carry transparent images.
//
// The container framing (ParseContainer, SerializeContainer) and the plane
// compositing (CombinePlanes, SplitPlanes) are fixed; the plane codec and the
// outer raster codec are interfaces, so backends can be swapped without
// touching the format logic.
package milimg

import (
	"context"
	"image"

	"github.com/edaniels/golog"
)

// Default backends used by the package-level Encode and Decode.
var (
	DefaultPlaneCodec  PlaneCodec  = AV1Codec{}
	DefaultRasterCodec RasterCodec = PNGRaster{}
)

// Decoder turns milimg containers back into raster images. The zero value
// uses the default backends and the global logger.
type Decoder struct {
	Planes PlaneCodec
	Raster RasterCodec
	Logger golog.Logger
}

// Decode parses a milimg container and returns the reconstructed image as
// PNG bytes.
func (d *Decoder) Decode(ctx context.Context, data []byte) ([]byte, error) {
	frame, err := d.DecodeImage(ctx, data)
	if err != nil {
		return nil, err
	}
	return d.raster().EncodeRaster(frame)
}

// DecodeImage parses a milimg container and returns the reconstructed RGBA
// frame. A version-1 container whose alpha payload cannot be decoded falls
// back to the color plane alone; every other failure is terminal.
func (d *Decoder) DecodeImage(ctx context.Context, data []byte) (*image.NRGBA, error) {
	h, err := ParseContainer(data)
	if err != nil {
		return nil, err
	}
	d.logger().Debugw("parsed container",
		"version", h.Version, "width", h.Width, "height", h.Height,
		"colorBytes", len(h.Color), "alphaBytes", len(h.Alpha))

	colorPlane, err := d.planes().DecodePlane(ctx, h.Color)
	if err != nil {
		return nil, &DecodeError{Stage: "color frame", Cause: err}
	}
	if colorPlane == nil {
		return nil, &DecodeError{Stage: "color frame"}
	}

	if h.Version != VersionAlpha {
		return colorPlane, nil
	}

	alphaPlane, err := d.planes().DecodePlane(ctx, h.Alpha)
	if err != nil || alphaPlane == nil {
		// The image is still usable without transparency; keep going.
		d.logger().Warnw("alpha frame unusable, emitting color plane only", "error", err)
		return colorPlane, nil
	}

	return CombinePlanes(colorPlane, alphaPlane)
}

func (d *Decoder) planes() PlaneCodec {
	if d.Planes != nil {
		return d.Planes
	}
	return DefaultPlaneCodec
}

func (d *Decoder) raster() RasterCodec {
	if d.Raster != nil {
		return d.Raster
	}
	return DefaultRasterCodec
}

func (d *Decoder) logger() golog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return golog.Global()
}

// Encoder turns raster images into milimg containers. The zero value uses
// the default backends and the global logger.
type Encoder struct {
	Planes PlaneCodec
	Raster RasterCodec
	Logger golog.Logger
}

// Encode decodes src (PNG, JPEG, or any other format the raster backend
// recognizes) and packs it into a milimg container. The version is inferred
// from the source: fully opaque images become version 0, anything with
// transparency becomes version 1. Quality is the AV1 quantizer in [0,63],
// 0 being the highest quality; out-of-range values are clamped.
func (e *Encoder) Encode(ctx context.Context, src []byte, quality int) ([]byte, error) {
	frame, err := e.raster().DecodeRaster(src)
	if err != nil {
		return nil, err
	}
	return e.EncodeImage(ctx, frame, VersionAuto, quality)
}

// EncodeImage packs img into a milimg container with an explicit version.
// VersionAuto picks version 0 for fully opaque images and version 1
// otherwise.
func (e *Encoder) EncodeImage(ctx context.Context, img image.Image, version, quality int) ([]byte, error) {
	frame := toNRGBA(img)
	quality = clampQuality(quality)

	if version == VersionAuto {
		version = VersionAlpha
		if frame.Opaque() {
			version = VersionOpaque
		}
	}
	if version != VersionOpaque && version != VersionAlpha {
		return nil, &UnsupportedVersionError{Version: uint32(version)}
	}

	colorPlane, alphaPlane := SplitPlanes(frame)

	colorPayload, err := e.planes().EncodePlane(ctx, colorPlane, quality)
	if err != nil {
		return nil, err
	}

	var alphaPayload []byte
	if version == VersionAlpha {
		if alphaPayload, err = e.planes().EncodePlane(ctx, alphaPlane, quality); err != nil {
			return nil, err
		}
	}

	w, h := frame.Rect.Dx(), frame.Rect.Dy()
	e.logger().Debugw("encoded planes",
		"version", version, "width", w, "height", h, "quality", quality,
		"colorBytes", len(colorPayload), "alphaBytes", len(alphaPayload))

	return SerializeContainer(uint32(version), uint32(w), uint32(h), colorPayload, alphaPayload)
}

func (e *Encoder) planes() PlaneCodec {
	if e.Planes != nil {
		return e.Planes
	}
	return DefaultPlaneCodec
}

func (e *Encoder) raster() RasterCodec {
	if e.Raster != nil {
		return e.Raster
	}
	return DefaultRasterCodec
}

func (e *Encoder) logger() golog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return golog.Global()
}

// Encode packs a raster image into a milimg container using the default
// backends. See Encoder.Encode.
func Encode(ctx context.Context, src []byte, quality int) ([]byte, error) {
	var e Encoder
	return e.Encode(ctx, src, quality)
}

// Decode reconstructs PNG bytes from a milimg container using the default
// backends. See Decoder.Decode.
func Decode(ctx context.Context, data []byte) ([]byte, error) {
	var d Decoder
	return d.Decode(ctx, data)
}
