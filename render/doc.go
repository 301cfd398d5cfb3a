// Copyright 2026 The moodcam Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render drives the grading kernel: it owns the worker pool, the
// LUT and grain caches, and the real-time loop that turns incoming camera
// frames into graded output.
//
// Two entry points matter:
//
//   - [Loop] is the live-preview path. Frames are pushed into a
//     latest-frame mailbox and graded one at a time; if frames arrive
//     faster than they can be graded, older ones are dropped, never
//     queued. Parameter edits are published as atomic snapshots, so a
//     frame is always graded with one coherent parameter set.
//
//   - [Export] is the one-shot still path. It runs the higher-quality
//     two-pass bloom and halation, honors context cancellation, and on
//     any failure falls back to returning the unmodified source image so
//     the user never loses a shot.
package render
