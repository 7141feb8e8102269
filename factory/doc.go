// Package factory wires dizzy pipelines together from configuration.
//
// PipelineFactory hides which frame source and sink implementations are in
// use, so the CLI and tests run the same convert and effect stages against
// either synthetic frames or image files on disk.
//
// # Configuration
//
// The factory starts from a config.Config (config.Default when nil) and
// applies environment variable overrides on top of it:
//   - DIZZY_USE_SIMULATION: "true" or "false" to use the synthetic source
//   - DIZZY_PHASE_INCREMENT: phase step per frame, within [-1, 1]
//   - DIZZY_ZOOM_RATE: zoom rate, within [0.5, 2]
//   - DIZZY_FRAME_RATE: frames per second, within [1, 240]
//
// Values that fail to parse or fall outside their bounds are logged at Warn
// and ignored.
//
// # Usage
//
//	factory := factory.NewPipelineFactory(cfg)
//
//	source, err := factory.CreateSource()
//	sink, err := factory.CreateSink()
//	processor, err := factory.CreateProcessor()
//
// # Testing Support
//
//	func TestMyFeature(t *testing.T) {
//	    f := factory.NewPipelineFactory(nil)
//	    source, err := f.CreateSimulationForTesting(factory.WithFrameCount(10))
//	    // Use source in tests...
//	}
package factory
