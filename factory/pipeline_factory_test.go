package factory

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/dizzy/config"
	"github.com/opd-ai/dizzy/real"
	simtesting "github.com/opd-ai/dizzy/testing"
	"github.com/opd-ai/dizzy/video"
)

// clearEnv makes sure no DIZZY_* variable from the host leaks into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvUseSimulation, EnvPhaseIncrement, EnvZoomRate, EnvFrameRate} {
		t.Setenv(name, "")
	}
}

func TestNewPipelineFactory_Defaults(t *testing.T) {
	clearEnv(t)

	factory := NewPipelineFactory(nil)
	cfg := factory.GetCurrentConfig()

	assert.Equal(t, config.Default(), cfg)
	assert.False(t, factory.IsUsingSimulation())
}

func TestNewPipelineFactory_CopiesBase(t *testing.T) {
	clearEnv(t)

	base := config.Default()
	factory := NewPipelineFactory(base)
	base.Effect.ZoomRate = 1.5

	assert.Equal(t, video.DefaultZoomRate, factory.GetCurrentConfig().Effect.ZoomRate)
}

func TestEnvironmentVariableParsing(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		verify func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "valid overrides",
			env: map[string]string{
				EnvUseSimulation:  "true",
				EnvPhaseIncrement: "0.05",
				EnvZoomRate:       "1.02",
				EnvFrameRate:      "60",
			},
			verify: func(t *testing.T, cfg *config.Config) {
				assert.True(t, cfg.Input.Simulate)
				assert.Equal(t, 0.05, cfg.Effect.PhaseIncrement)
				assert.Equal(t, 1.02, cfg.Effect.ZoomRate)
				assert.Equal(t, 60, cfg.Input.FrameRate)
			},
		},
		{
			name: "unparseable values keep defaults",
			env: map[string]string{
				EnvUseSimulation:  "maybe",
				EnvPhaseIncrement: "fast",
				EnvZoomRate:       "",
				EnvFrameRate:      "thirty",
			},
			verify: func(t *testing.T, cfg *config.Config) {
				assert.False(t, cfg.Input.Simulate)
				assert.Equal(t, video.DefaultPhaseIncrement, cfg.Effect.PhaseIncrement)
				assert.Equal(t, video.DefaultZoomRate, cfg.Effect.ZoomRate)
				assert.Equal(t, 30, cfg.Input.FrameRate)
			},
		},
		{
			name: "out of bounds values keep defaults",
			env: map[string]string{
				EnvPhaseIncrement: "2.5",
				EnvZoomRate:       "0",
				EnvFrameRate:      "1000",
			},
			verify: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, video.DefaultPhaseIncrement, cfg.Effect.PhaseIncrement)
				assert.Equal(t, video.DefaultZoomRate, cfg.Effect.ZoomRate)
				assert.Equal(t, 30, cfg.Input.FrameRate)
			},
		},
		{
			name: "NaN is rejected",
			env: map[string]string{
				EnvZoomRate: "NaN",
			},
			verify: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, video.DefaultZoomRate, cfg.Effect.ZoomRate)
			},
		},
		{
			name: "bounds are inclusive",
			env: map[string]string{
				EnvPhaseIncrement: "-1",
				EnvZoomRate:       "2",
				EnvFrameRate:      "1",
			},
			verify: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, -1.0, cfg.Effect.PhaseIncrement)
				assert.Equal(t, 2.0, cfg.Effect.ZoomRate)
				assert.Equal(t, 1, cfg.Input.FrameRate)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			tt.verify(t, NewPipelineFactory(nil).GetCurrentConfig())
		})
	}
}

func TestCreateSource_Simulation(t *testing.T) {
	clearEnv(t)

	cfg := config.Default()
	cfg.Input.Simulate = true
	cfg.Input.Width = 8
	cfg.Input.Height = 4
	cfg.Input.Frames = 2

	factory := NewPipelineFactory(cfg)
	source, err := factory.CreateSource()
	require.NoError(t, err)
	defer source.Close()

	assert.True(t, source.IsSimulation())
	_, ok := source.(*simtesting.SimulatedFrameSource)
	assert.True(t, ok)

	frame, err := source.Next()
	require.NoError(t, err)
	assert.Equal(t, 8, frame.Width)
	assert.Equal(t, 4, frame.Height)
}

func TestCreateSource_PixelFormat(t *testing.T) {
	clearEnv(t)

	cfg := config.Default()
	cfg.Input.Simulate = true
	cfg.Input.PixelFormat = "rgba"
	cfg.Input.Width = 4
	cfg.Input.Height = 4

	factory := NewPipelineFactory(cfg)
	assert.Equal(t, video.FormatRGBA, FrameIOConfig(factory.GetCurrentConfig()).Format)

	source, err := factory.CreateSource()
	require.NoError(t, err)
	frame, err := source.Next()
	require.NoError(t, err)
	assert.Equal(t, video.FormatRGBA, frame.Format)

	processor, err := factory.CreateProcessor()
	require.NoError(t, err)
	out, err := processor.ProcessFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, video.FormatBGRA, out.Format)
}

func TestCreateSource_RealRequiresImages(t *testing.T) {
	clearEnv(t)

	cfg := config.Default()
	cfg.Input.Dir = t.TempDir()

	_, err := NewPipelineFactory(cfg).CreateSource()
	assert.Error(t, err, "empty directory has no frames")
}

func TestCreateSink(t *testing.T) {
	clearEnv(t)

	t.Run("png when output dir set", func(t *testing.T) {
		cfg := config.Default()
		cfg.Output.Dir = t.TempDir()
		sink, err := NewPipelineFactory(cfg).CreateSink()
		require.NoError(t, err)
		_, ok := sink.(*real.PNGSink)
		assert.True(t, ok)
	})

	t.Run("recording in simulation without output dir", func(t *testing.T) {
		cfg := config.Default()
		cfg.Input.Simulate = true
		cfg.Output.Dir = ""
		sink, err := NewPipelineFactory(cfg).CreateSink()
		require.NoError(t, err)
		_, ok := sink.(*simtesting.RecordingSink)
		assert.True(t, ok)
	})

	t.Run("real without output dir fails", func(t *testing.T) {
		cfg := config.Default()
		cfg.Output.Dir = ""
		_, err := NewPipelineFactory(cfg).CreateSink()
		assert.Error(t, err)
	})
}

func TestCreateProcessor(t *testing.T) {
	clearEnv(t)

	cfg := config.Default()
	cfg.Effect.PhaseIncrement = 0.1
	cfg.Effect.ZoomRate = 1.05

	processor, err := NewPipelineFactory(cfg).CreateProcessor()
	require.NoError(t, err)

	effects := processor.GetEffectChain()
	require.Len(t, effects, 1)
	dizzy, ok := effects[0].(*video.DizzyEffect)
	require.True(t, ok)
	assert.Equal(t, 0.1, dizzy.PhaseIncrement())
	assert.Equal(t, 1.05, dizzy.ZoomRate())
}

func TestCreateProcessor_Scaling(t *testing.T) {
	clearEnv(t)

	cfg := config.Default()
	cfg.Output.ScaleWidth = 6
	cfg.Output.ScaleHeight = 4

	factory := NewPipelineFactory(cfg)
	processor, err := factory.CreateProcessor()
	require.NoError(t, err)

	source, err := factory.CreateSimulationForTesting(WithFrameSize(12, 8), WithFrameCount(1))
	require.NoError(t, err)
	frame, err := source.Next()
	require.NoError(t, err)

	out, err := processor.ProcessFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, 6, out.Width)
	assert.Equal(t, 4, out.Height)
}

func TestCreateProcessor_InvalidEffect(t *testing.T) {
	clearEnv(t)

	factory := NewPipelineFactory(nil)
	factory.defaultConfig.Effect.ZoomRate = -1

	_, err := factory.CreateProcessor()
	assert.ErrorIs(t, err, video.ErrDegenerateZoom)
}

func TestCreateSimulationForTesting(t *testing.T) {
	clearEnv(t)

	source, err := NewPipelineFactory(nil).CreateSimulationForTesting(
		WithPattern(simtesting.PatternBars),
		WithFrameSize(7, 3),
		WithFrameCount(2),
	)
	require.NoError(t, err)

	count := 0
	for {
		frame, err := source.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, 7, frame.Width)
		count++
	}
	assert.Equal(t, 2, count)
}

func TestModeSwitching(t *testing.T) {
	clearEnv(t)

	factory := NewPipelineFactory(nil)
	factory.SwitchToSimulation()
	assert.True(t, factory.IsUsingSimulation())
	factory.SwitchToReal()
	assert.False(t, factory.IsUsingSimulation())
}

func TestUpdateConfig(t *testing.T) {
	clearEnv(t)

	factory := NewPipelineFactory(nil)
	assert.Error(t, factory.UpdateConfig(nil))

	bad := config.Default()
	bad.Input.FrameRate = 0
	assert.ErrorIs(t, factory.UpdateConfig(bad), config.ErrInvalidConfig)

	good := config.Default()
	good.Effect.ZoomRate = 1.2
	require.NoError(t, factory.UpdateConfig(good))
	good.Effect.ZoomRate = 1.3
	assert.Equal(t, 1.2, factory.GetCurrentConfig().Effect.ZoomRate)
}
