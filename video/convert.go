package video

import (
	"fmt"
	"image"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

// Converter is the first stage of the pipeline. It turns an incoming frame
// into the fixed FormatBGRA layout that effects operate on.
type Converter interface {
	// Convert returns a new frame in FormatBGRA carrying the input's metadata
	Convert(frame *Frame) (*Frame, error)
}

// PackedConverter normalizes the packed 32-bit layouts into FormatBGRA.
type PackedConverter struct{}

// NewPackedConverter creates a packed layout converter.
func NewPackedConverter() *PackedConverter {
	return &PackedConverter{}
}

// Convert copies FormatBGRA frames and swizzles FormatRGBA frames.
func (pc *PackedConverter) Convert(frame *Frame) (*Frame, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}

	switch frame.Format {
	case FormatBGRA:
		return frame.Clone(), nil
	case FormatRGBA:
		out := make([]uint32, len(frame.Pixels))
		for i, v := range frame.Pixels {
			out[i] = swapRedBlue(v)
		}
		return frame.withPixels(out, FormatBGRA), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, frame.Format)
	}
}

// swapRedBlue exchanges the low and third bytes of a packed pixel.
func swapRedBlue(v uint32) uint32 {
	return v&0xff00ff00 | (v&0xff)<<16 | (v>>16)&0xff
}

// ScalingConverter normalizes the layout and resizes every frame to a fixed
// output size.
//
// Frames that already have the target size skip interpolation.
type ScalingConverter struct {
	packed *PackedConverter
	width  int
	height int
	scaler draw.Scaler
}

// NewScalingConverter creates a converter that outputs width x height frames
// using approximate bilinear interpolation.
func NewScalingConverter(width, height int) (*ScalingConverter, error) {
	if _, err := NewFrame(width, height, FormatBGRA); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewScalingConverter",
		"width":    width,
		"height":   height,
	}).Info("Creating scaling converter")

	return &ScalingConverter{
		packed: NewPackedConverter(),
		width:  width,
		height: height,
		scaler: draw.ApproxBiLinear,
	}, nil
}

// TargetSize returns the output dimensions.
func (sc *ScalingConverter) TargetSize() (width, height int) {
	return sc.width, sc.height
}

// Convert normalizes the layout, then scales to the target size.
func (sc *ScalingConverter) Convert(frame *Frame) (*Frame, error) {
	packed, err := sc.packed.Convert(frame)
	if err != nil {
		return nil, err
	}
	if packed.Width == sc.width && packed.Height == sc.height {
		return packed, nil
	}

	src := packed.ToImage()
	dst := image.NewNRGBA(image.Rect(0, 0, sc.width, sc.height))
	sc.scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	scaled, err := FrameFromImage(dst)
	if err != nil {
		return nil, fmt.Errorf("scaling failed: %w", err)
	}

	out := packed.withPixels(scaled.Pixels, FormatBGRA)
	out.Width = sc.width
	out.Height = sc.height
	return out, nil
}

// FrameFromImage packs an image into a new FormatBGRA frame. Color values are
// stored unpremultiplied. The returned frame has zero temporal metadata.
func FrameFromImage(img image.Image) (*Frame, error) {
	if img == nil {
		return nil, ErrNilFrame
	}
	b := img.Bounds()
	frame, err := NewFrame(b.Dx(), b.Dy(), FormatBGRA)
	if err != nil {
		return nil, err
	}

	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}

	for y := 0; y < frame.Height; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+frame.Width*4]
		for x := 0; x < frame.Width; x++ {
			p := row[x*4 : x*4+4 : x*4+4]
			frame.Pixels[y*frame.Width+x] = uint32(p[3])<<24 | uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
		}
	}
	return frame, nil
}

// ToImage unpacks the frame into a new NRGBA image.
func (f *Frame) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, v := range f.Pixels {
		if f.Format == FormatRGBA {
			v = swapRedBlue(v)
		}
		p := img.Pix[i*4 : i*4+4 : i*4+4]
		p[0] = byte(v >> 16)
		p[1] = byte(v >> 8)
		p[2] = byte(v)
		p[3] = byte(v >> 24)
	}
	return img
}
