// Copyright 2026 The moodcam Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodcam/emulsion"
	"github.com/moodcam/emulsion/grade"
)

// captureTarget records the frames it is shown, copying each one since
// the loop reuses its output buffer.
type captureTarget struct {
	frames []*image.RGBA
	err    error
}

func (c *captureTarget) Present(img *image.RGBA) error {
	if c.err != nil {
		return c.err
	}
	cp := image.NewRGBA(img.Bounds())
	copy(cp.Pix, img.Pix)
	c.frames = append(c.frames, cp)
	return nil
}

func TestLoopPresentsLatestFrame(t *testing.T) {
	tgt := &captureTarget{}
	l := NewLoop(tgt, Options{Workers: 2, Strategy: grade.GrainHash})
	defer l.Close()

	l.PushFrame(testFrame(32, 24, 1))
	require.True(t, l.RenderOnce())
	require.Len(t, tgt.frames, 1)
	assert.Equal(t, image.Rect(0, 0, 32, 24), tgt.frames[0].Bounds())
	assert.EqualValues(t, 1, l.Rendered())
}

// TestLoopDropsStaleFrames tests the backpressure policy: pushing faster
// than the loop grades replaces pending frames instead of queueing them,
// and only the newest one is presented.
func TestLoopDropsStaleFrames(t *testing.T) {
	tgt := &captureTarget{}
	l := NewLoop(tgt, Options{Workers: 2, Strategy: grade.GrainHash})
	defer l.Close()

	a := testFrame(16, 16, 1)
	b := testFrame(16, 16, 2)
	c := testFrame(16, 16, 3)
	l.PushFrame(a)
	l.PushFrame(b)
	l.PushFrame(c)

	assert.EqualValues(t, 2, l.Dropped(), "two stale frames must be replaced")

	require.True(t, l.RenderOnce())
	assert.False(t, l.RenderOnce(), "mailbox must be empty after one tick")
	require.Len(t, tgt.frames, 1, "dropped frames must never reach the target")

	// The presented frame is graded c, not graded a or b: grade c directly
	// and compare against the identity-parameter loop output.
	r := New(Options{Workers: 2, Strategy: grade.GrainHash})
	defer r.Close()
	want := grade.Process(c, r.compile(l.Parameters()), 0)
	// Grain is static at identity defaults (strength 0), so time does not
	// matter here.
	assert.Equal(t, want.Pix, tgt.frames[0].Pix)
}

func TestLoopParameterSnapshot(t *testing.T) {
	l := NewLoop(&captureTarget{}, Options{Workers: 1})
	defer l.Close()

	ps := emulsion.NewParameterSet()
	ps.ExposureEV = 1.5
	require.NoError(t, l.SetParameters(ps))

	// The loop clones on publish; mutating the caller's set afterwards
	// must not leak into the snapshot.
	ps.ExposureEV = -4
	assert.Equal(t, 1.5, l.Parameters().ExposureEV)
}

func TestLoopRejectsInvalidParameters(t *testing.T) {
	l := NewLoop(&captureTarget{}, Options{Workers: 1})
	defer l.Close()

	ps := emulsion.NewParameterSet()
	ps.Curves.LumaPoints = emulsion.CurvePoints{{0.8, 0}, {0.2, 1}}
	assert.Error(t, l.SetParameters(ps))
	assert.Error(t, l.SetParameters(nil))

	// The previous snapshot stays in effect.
	assert.Equal(t, 0.0, l.Parameters().ExposureEV)
}

func TestLoopRunHonorsCancel(t *testing.T) {
	tgt := &captureTarget{}
	l := NewLoop(tgt, Options{Workers: 2, Strategy: grade.GrainHash})
	defer l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	l.PushFrame(testFrame(16, 16, 1))
	require.Eventually(t, func() bool { return l.Rendered() == 1 },
		2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

// TestLoopSurvivesPresentFailure tests that a failing target does not
// stop the loop; the frame is skipped and the next one still renders.
func TestLoopSurvivesPresentFailure(t *testing.T) {
	tgt := &captureTarget{err: assert.AnError}
	l := NewLoop(tgt, Options{Workers: 1, Strategy: grade.GrainHash})
	defer l.Close()

	l.PushFrame(testFrame(8, 8, 1))
	assert.True(t, l.RenderOnce())
	assert.EqualValues(t, 0, l.Rendered())

	tgt.err = nil
	l.PushFrame(testFrame(8, 8, 2))
	assert.True(t, l.RenderOnce())
	assert.EqualValues(t, 1, l.Rendered())
}
