// Package emulsion implements a real-time film-emulation pipeline.
//
// # Overview
//
// emulsion reproduces the visual character of analog film stocks by running
// a parametrized chain of color-science and texture transforms over a live
// camera feed or a still photograph: exposure, white balance, tone curves
// via lookup table, saturation/vibrance, per-channel tone grading,
// procedural film grain, vignette, bloom and halation.
//
// # Quick Start
//
//	import (
//	    "github.com/moodcam/emulsion"
//	    "github.com/moodcam/emulsion/render"
//	)
//
//	ps := emulsion.NewParameterSet()
//	ps.TemperatureK = 3200 // warm tungsten look
//	ps.Grain.Strength = 0.4
//
//	out, ok := render.Export(context.Background(), src, ps, render.ExportOptions{})
//	if !ok {
//	    // out is the unmodified source; a capture is never lost
//	}
//
// # Architecture
//
// The library is organized into:
//   - Public API: ParameterSet (the preset record and its JSON schema)
//   - Internal: curve (monotone cubic splines), lut (curve lookup tables),
//     grain (procedural noise synthesis), srgb (transfer functions),
//     texture (pluggable samplers)
//   - grade: the per-pixel transform chain
//   - render: the frame loop, parallel kernel execution and still export
//
// The per-pixel chain is a pure function of the source pixel, the packed
// textures and an immutable parameter snapshot, so the same math runs on a
// CPU worker pool or, in principle, a GPU fragment stage. GPU API binding
// is out of scope for this module.
package emulsion
