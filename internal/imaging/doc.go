// Package imaging implements the pixel work of the photo editor: the
// adjustment pipeline, sharpening, the crop/rotate/flip transform,
// resampling, source loading and export encoding, plus the crop overlay and
// color sampling used while editing.
//
// Every operation takes an image.Image it does not modify and returns a new
// *image.NRGBA whose bounds start at (0,0). A decoded source can therefore
// be shared read-only between a preview render and an export without
// copying or locking.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Crop boxes are given in
// percent of the source (see package crop) and converted to pixels here.
//
// # Channel Arithmetic
//
// The adjustment pipeline works on 8-bit channels held in float64. After
// every stage each channel is rounded half-up and clamped to [0,255], so a
// stage never sees an out-of-range value from the one before it. Alpha is
// never changed by the pipeline.
//
// # Parallelism
//
// Per-pixel stages, clarity and sharpening split the image into row bands
// with bild's parallel.Line. Neighbourhood passes read from a snapshot taken
// before the pass, so the output does not depend on scheduling.
//
// # Encoders
//
// JPEG and PNG are always available. WebP export needs libvips and is
// compiled in with the "govips" build tag (and cgo); without it the WebP
// encoder fails with ErrEncoderUnavailable and callers fall back to JPEG.
package imaging
