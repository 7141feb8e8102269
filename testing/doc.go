// Package testing provides simulated frame sources and sinks for
// deterministic tests of the dizzy pipeline.
//
// # Simulation vs Real Implementation
//
// Frames can enter and leave the pipeline two ways:
//
//   - Simulation (this package): frames are synthesized in memory from a
//     named test pattern and recorded in memory on the way out.
//
//   - Real (real package): frames are decoded from an image sequence on
//     disk and encoded back to PNG files.
//
// Both implementations conform to interfaces.IFrameSource and
// interfaces.IFrameSink, and the factory package switches between them.
//
// # Usage
//
//	config := &interfaces.FrameIOConfig{
//	    UseSimulation: true,
//	    Pattern:       testing.PatternChecker,
//	    Width:         64,
//	    Height:        48,
//	    FrameCount:    10,
//	    FrameRate:     30,
//	}
//	source, err := testing.NewSimulatedFrameSource(config)
//	sink := testing.NewRecordingSink()
//
//	for {
//	    frame, err := source.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    out, err := processor.ProcessFrame(frame)
//	    sink.Write(out)
//	}
//
// # Patterns
//
// The patterns are deterministic for a given frame index. The checker
// pattern scrolls one pixel per frame and the gradient cycles its blue
// channel, so consecutive frames differ and exercise the blend.
//
// # Thread Safety
//
// SimulatedFrameSource and RecordingSink are safe for concurrent use.
package testing
