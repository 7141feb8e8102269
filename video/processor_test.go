package video

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepTimeProvider reports a fixed duration for every Since call.
type stepTimeProvider struct {
	now  time.Time
	step time.Duration
}

func (s *stepTimeProvider) Now() time.Time                { return s.now }
func (s *stepTimeProvider) Since(time.Time) time.Duration { return s.step }

func TestNewProcessor_DefaultsToPackedConverter(t *testing.T) {
	processor := NewProcessor(nil)

	assert.NotNil(t, processor)
	assert.IsType(t, &PackedConverter{}, processor.converter)
	assert.Empty(t, processor.GetEffectChain())
}

func TestProcessor_ProcessFrameRunsBothStages(t *testing.T) {
	dizzy := NewDizzyEffect()
	processor := NewProcessor(NewPackedConverter(), dizzy)

	frame := &Frame{
		Width:    2,
		Height:   2,
		Format:   FormatRGBA,
		Pixels:   []uint32{0xff0000ff, 0xff00ff00, 0xffff0000, 0xffffffff},
		PTS:      3000,
		TimeBase: Rational{Num: 1, Den: 90000},
		Index:    17,
		TraceID:  "t-17",
	}

	out, err := processor.ProcessFrame(frame)
	require.NoError(t, err)

	// The first frame bootstraps, so the output is the converted input
	assert.Equal(t, FormatBGRA, out.Format)
	assert.Equal(t, []uint32{0xffff0000, 0xff00ff00, 0xff0000ff, 0xffffffff}, out.Pixels)
	assert.Equal(t, int64(3000), out.PTS)
	assert.Equal(t, Rational{Num: 1, Den: 90000}, out.TimeBase)
	assert.Equal(t, int64(17), out.Index)
	assert.Equal(t, "t-17", out.TraceID)

	stats := processor.Stats()
	assert.Equal(t, int64(1), stats.FramesProcessed)
	assert.Equal(t, int64(17), stats.LastFrameIndex)
}

func TestProcessor_SeparateStages(t *testing.T) {
	processor := NewProcessor(NewPackedConverter(), NewDizzyEffect())

	converted, err := processor.Convert(createTestFrame(4, 4))
	require.NoError(t, err)

	out, err := processor.Process(converted)
	require.NoError(t, err)
	assert.Equal(t, converted.Pixels, out.Pixels)

	rgba := createTestFrame(4, 4)
	rgba.Format = FormatRGBA
	_, err = processor.Process(rgba)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestProcessor_RejectsAndCountsFailures(t *testing.T) {
	processor := NewProcessor(NewPackedConverter(), NewDizzyEffect())

	_, err := processor.ProcessFrame(nil)
	assert.ErrorIs(t, err, ErrNilFrame)

	_, err = processor.ProcessFrame(&Frame{Width: 4, Height: 4, Format: FormatBGRA, Pixels: make([]uint32, 3)})
	assert.ErrorIs(t, err, ErrBufferSize)

	_, err = processor.ProcessFrame(&Frame{Width: 1, Height: 1, Format: PixelFormat(77), Pixels: make([]uint32, 1)})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	stats := processor.Stats()
	assert.Equal(t, int64(3), stats.FramesFailed)
	assert.Equal(t, int64(0), stats.FramesProcessed)
}

func TestProcessor_Metrics(t *testing.T) {
	processor := NewProcessor(nil, NewDizzyEffect())
	processor.SetTimeProvider(&stepTimeProvider{now: time.Unix(0, 0), step: 4 * time.Millisecond})

	for i := 0; i < 3; i++ {
		frame := createTestFrame(8, 8)
		frame.Index = int64(i)
		_, err := processor.ProcessFrame(frame)
		require.NoError(t, err)
	}

	stats := processor.Stats()
	assert.Equal(t, int64(3), stats.FramesProcessed)
	assert.InDelta(t, float64(4*time.Millisecond), float64(stats.AvgFrameTime), 10)
	assert.Equal(t, 4*time.Millisecond, stats.PeakFrameTime)
	assert.Equal(t, int64(2), stats.LastFrameIndex)

	processor.ResetMetrics()
	assert.Equal(t, ProcessingMetrics{}, processor.Stats())

	processor.SetTimeProvider(nil)
	assert.IsType(t, DefaultTimeProvider{}, processor.timeProvider)
}

func TestProcessor_DoReconfiguresBetweenFrames(t *testing.T) {
	dizzy := NewDizzyEffect()
	processor := NewProcessor(nil, dizzy)

	err := processor.Do(func(effects []Effect) error {
		require.Len(t, effects, 1)
		return effects[0].(*DizzyEffect).SetZoomRate(2)
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, dizzy.ZoomRate())

	err = processor.Do(func(effects []Effect) error {
		return effects[0].(*DizzyEffect).SetZoomRate(-1)
	})
	assert.ErrorIs(t, err, ErrDegenerateZoom)
}

func TestProcessor_SerializesConcurrentCallers(t *testing.T) {
	dizzy := NewDizzyEffect()
	processor := NewProcessor(nil, dizzy)

	const workers, perWorker = 4, 10
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, err := processor.ProcessFrame(createTestFrame(16, 16))
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	blended, bootstrapped := dizzy.FrameCounts()
	assert.Equal(t, uint64(1), bootstrapped)
	assert.Equal(t, uint64(workers*perWorker-1), blended)
	assert.Equal(t, int64(workers*perWorker), processor.Stats().FramesProcessed)
}
