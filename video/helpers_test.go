package video

// createTestFrame returns a FormatBGRA frame with a distinct opaque value in
// every pixel.
func createTestFrame(width, height int) *Frame {
	frame := &Frame{
		Width:    width,
		Height:   height,
		Format:   FormatBGRA,
		Pixels:   make([]uint32, width*height),
		TimeBase: Rational{Num: 1, Den: 30},
	}

	// Fill with test pattern
	for i := range frame.Pixels {
		r := uint32(i*7) & 0xff
		g := uint32(i*13) & 0xff
		b := uint32(i*29) & 0xff
		frame.Pixels[i] = 0xff000000 | r<<16 | g<<8 | b
	}
	return frame
}

// filledFrame returns a FormatBGRA frame with every pixel set to v.
func filledFrame(width, height int, v uint32) *Frame {
	frame := &Frame{
		Width:  width,
		Height: height,
		Format: FormatBGRA,
		Pixels: make([]uint32, width*height),
	}
	frame.Fill(v)
	return frame
}
