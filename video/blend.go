package video

import "fmt"

const (
	// blendChannelMask clears the two low bits of red and green before the
	// weighted sum so that 3*prev + cur cannot carry into the next channel.
	// Blue sits at the bottom of the word and may use the two cleared green bits.
	blendChannelMask = 0x00fcfcff

	// opaqueAlpha forces the alpha channel to 0xff.
	opaqueAlpha = 0xff000000
)

// BlendPixel mixes a previous-frame pixel and a current-frame pixel as 75%
// previous and 25% current on the color channels, with alpha forced opaque.
func BlendPixel(prev, cur uint32) uint32 {
	v := 3*(prev&blendChannelMask) + (cur & blendChannelMask)
	return (v >> 2) | opaqueAlpha
}

// BlendWarp samples previous through params and blends the result with
// current, returning a new frame with current's geometry and metadata.
//
// The sampling index is clamped to the valid range [0, Width*Height-1], so
// coordinates that leave the frame repeat the first or last pixel.
func BlendWarp(current, previous *Frame, params WarpParameters) (*Frame, error) {
	if err := current.Validate(); err != nil {
		return nil, fmt.Errorf("current frame: %w", err)
	}
	if err := previous.Validate(); err != nil {
		return nil, fmt.Errorf("previous frame: %w", err)
	}
	if current.Key() != previous.Key() {
		return nil, fmt.Errorf("%w: current %s, previous %s", ErrFormatMismatch, current.Key(), previous.Key())
	}

	out := make([]uint32, current.PixelCount())
	warpBlend(out, current.Pixels, previous.Pixels, current.Width, current.Height, params)
	return current.withPixels(out, current.Format), nil
}

// warpBlend is the inner loop of BlendWarp. dst, cur and prev must all hold
// width*height pixels.
func warpBlend(dst, cur, prev []uint32, width, height int, p WarpParameters) {
	last := int64(width*height - 1)
	dx, dy := int64(p.DX), int64(p.DY)
	sx, sy := int64(p.SX), int64(p.SY)

	i := 0
	for y := 0; y < height; y++ {
		ox, oy := sx, sy
		for x := 0; x < width; x++ {
			j := (oy>>16)*int64(width) + (ox >> 16)
			if j < 0 {
				j = 0
			} else if j > last {
				j = last
			}

			dst[i] = BlendPixel(prev[j], cur[i])
			i++
			ox += dx
			oy += dy
		}
		sx -= dy
		sy += dx
	}
}
