// Package interfaces defines core abstractions for frame input and output in
// the dizzy pipeline.
//
// This package provides the interfaces that enable switching between
// synthetic and file-backed frame sources, supporting both real image
// sequences and deterministic testing scenarios.
//
// # Core Interfaces
//
// [IFrameSource] produces frames one at a time in arrival order and returns
// io.EOF when exhausted:
//
//	source, err := factory.NewPipelineFactory(cfg).CreateSource()
//	for {
//	    frame, err := source.Next()
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    ...
//	}
//
// [IFrameSink] consumes processed frames:
//
//	if err := sink.Write(out); err != nil {
//	    return fmt.Errorf("write failed: %w", err)
//	}
//
// # Configuration
//
// [FrameIOConfig] selects between the synthetic source in the testing package
// and the image sequence source in the real package.
package interfaces
