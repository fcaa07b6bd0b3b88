package milimg

import (
	"bytes"
	"context"
	"image"

	"github.com/gen2brain/avif"
	"github.com/pkg/errors"
)

// AV1Codec encodes planes as AV1 intra frames via libavif. It is the default
// plane codec.
type AV1Codec struct {
	// Speed is the encoder speed preset in [0,10]; 0 is slowest/best.
	// The zero value selects defaultSpeed.
	Speed int
}

const (
	defaultSpeed  = 8
	av1MaxQuality = 100
)

func (c AV1Codec) EncodePlane(ctx context.Context, frame *image.NRGBA, quality int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &CodecError{Op: "av1 encode", Cause: err}
	}
	if frame.Rect.Dx() <= 0 || frame.Rect.Dy() <= 0 {
		return nil, &CodecError{Op: "av1 encode", Cause: errors.Errorf("unsupported dimensions %dx%d", frame.Rect.Dx(), frame.Rect.Dy())}
	}

	speed := c.Speed
	if speed == 0 {
		speed = defaultSpeed
	}

	var buf bytes.Buffer
	opts := avif.Options{
		Quality:      av1Quality(quality),
		QualityAlpha: av1MaxQuality,
		Speed:        speed,
	}
	if err := avif.Encode(&buf, frame, opts); err != nil {
		return nil, &CodecError{Op: "av1 encode", Cause: err}
	}
	return buf.Bytes(), nil
}

func (c AV1Codec) DecodePlane(ctx context.Context, payload []byte) (*image.NRGBA, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, &CodecError{Op: "av1 decode", Cause: err}
	}
	img, err := avif.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, &CodecError{Op: "av1 decode", Cause: err}
	}
	return toNRGBA(img), nil
}

// av1Quality maps the quantizer-style quality in [0,63] (0 best) onto
// libavif's [0,100] scale (100 best).
func av1Quality(q int) int {
	q = clampQuality(q)
	return av1MaxQuality - q*av1MaxQuality/QualityWorst
}
