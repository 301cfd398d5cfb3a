// Copyright 2026 The moodcam Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"github.com/moodcam/emulsion"
)

// Target receives graded frames from the loop. Present is called from the
// loop goroutine; the frame buffer is reused across ticks, so
// implementations must copy anything they retain past the call.
type Target interface {
	Present(*image.RGBA) error
}

// Loop is the real-time preview pipeline. A camera goroutine pushes
// frames, an editor goroutine publishes parameter edits, and the loop
// goroutine grades whichever frame is newest with whichever parameter
// snapshot is current.
//
// Backpressure policy: frames are never queued. The mailbox holds exactly
// one frame; pushing while one is pending replaces it and counts a drop.
// The preview always shows the most recent camera frame the CPU could
// keep up with, at whatever rate that is.
type Loop struct {
	r      *Renderer
	target Target

	// params is the atomic snapshot shared with the editor goroutine.
	// A tick loads it exactly once, so every pixel of a frame sees the
	// same parameter set even while the user drags a slider.
	params atomic.Pointer[emulsion.ParameterSet]

	mailbox atomic.Pointer[image.RGBA]
	kick    chan struct{}

	dropped  atomic.Uint64
	rendered atomic.Uint64

	start time.Time
	dst   *image.RGBA
}

// NewLoop creates a loop grading into target. The loop starts with
// identity parameters; call SetParameters to apply a preset.
func NewLoop(target Target, opts Options) *Loop {
	l := &Loop{
		r:      New(opts),
		target: target,
		kick:   make(chan struct{}, 1),
		start:  time.Now(),
	}
	l.params.Store(emulsion.NewParameterSet())
	return l
}

// SetParameters publishes a new parameter snapshot. The set is validated,
// clamped, and deep-copied; the caller keeps ownership of ps. The next
// tick picks it up.
func (l *Loop) SetParameters(ps *emulsion.ParameterSet) error {
	if ps == nil {
		return fmt.Errorf("render: nil parameter set")
	}
	if err := ps.Validate(); err != nil {
		return err
	}
	cl := ps.Clone()
	cl.Clamp()
	l.params.Store(cl)
	return nil
}

// Parameters returns a copy of the current snapshot.
func (l *Loop) Parameters() *emulsion.ParameterSet {
	return l.params.Load().Clone()
}

// PushFrame hands a camera frame to the loop. The loop takes ownership of
// img. Safe to call from any goroutine.
func (l *Loop) PushFrame(img *image.RGBA) {
	if img == nil {
		return
	}
	if old := l.mailbox.Swap(img); old != nil {
		l.dropped.Add(1)
	}
	select {
	case l.kick <- struct{}{}:
	default:
	}
}

// Dropped returns the number of frames replaced before they were graded.
func (l *Loop) Dropped() uint64 { return l.dropped.Load() }

// Rendered returns the number of frames graded and presented.
func (l *Loop) Rendered() uint64 { return l.rendered.Load() }

// RenderOnce grades the pending frame, if any. Returns false when the
// mailbox was empty. Grading or present failures are logged and the frame
// is skipped; a bad frame must not take the preview down.
func (l *Loop) RenderOnce() bool {
	src := l.mailbox.Swap(nil)
	if src == nil {
		return false
	}
	ps := l.params.Load()
	t := float32(time.Since(l.start).Seconds())

	if l.dst == nil || l.dst.Bounds() != src.Bounds() {
		l.dst = image.NewRGBA(src.Bounds())
	}
	if err := l.r.RenderInto(l.dst, src, ps, t); err != nil {
		emulsion.Logger().Warn("dropping frame", "err", err)
		return true
	}
	if err := l.target.Present(l.dst); err != nil {
		emulsion.Logger().Warn("present failed", "err", err)
		return true
	}
	l.rendered.Add(1)
	return true
}

// Run grades frames as they arrive until ctx is cancelled. It returns
// ctx.Err(). Run owns the loop's render state; do not call RenderOnce
// concurrently.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.kick:
			l.RenderOnce()
		}
	}
}

// Close releases the worker pool. The loop must not be used afterwards.
func (l *Loop) Close() { l.r.Close() }
