// Package real provides file-backed frame sources and sinks for dizzy.
//
// ImageSequenceSource decodes a directory of still images in lexical file
// name order. PNG and JPEG are decoded by the standard library; BMP, TIFF
// and WebP are decoded by golang.org/x/image. Every decoded image is packed
// into a FormatBGRA frame with increasing Index and PTS, a TimeBase of
// 1/FrameRate, and a fresh TraceID.
//
// PNGSink writes each processed frame to OutputDir as frame_NNNNNN.png,
// numbered by write order.
//
// Both types implement the interfaces package contracts, so the factory
// package can swap them with the in-memory implementations from the testing
// package:
//
//	source, err := real.NewImageSequenceSource(&interfaces.FrameIOConfig{
//	    InputDir:  "frames/",
//	    FrameRate: 30,
//	})
//	sink, err := real.NewPNGSink(&interfaces.FrameIOConfig{OutputDir: "out/"})
//
// Frames of differing sizes are passed through as they are; the dizzy effect
// treats a size change as a format change and bootstraps again.
package real
