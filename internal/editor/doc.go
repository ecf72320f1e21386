// Package editor ties the pixel pipeline, presets, crop interaction and
// preview scheduling into an editing session.
//
// A Session owns one decoded source. Edits (adjustments, preset selection,
// crop pointer events, rotation, flips) mutate the session state and mark
// the preview dirty; the preview scheduler renders the newest state on a
// downsampled copy of the source. Export re-runs the same pipeline on the
// full-resolution original and encodes the result.
//
// Sessions are never persisted. A Recipe captures an edit so it can be
// replayed on another session, which is how headless renders work.
package editor
