// Package exrarray reads and writes OpenEXR files as numeric arrays.
//
// An image can be handed over in three shapes (see ndarray.Payload): a dense
// array with one dtype for all channels, a channel map with one plane and
// dtype per name, or a structured array with one field per channel. The
// EXR encoding itself is done by github.com/mrjoshuak/go-openexr.
//
// Example usage:
//
//	img, _ := ndarray.DenseOf(pixels, height, width, 3)
//	_ = exrarray.ImWrite("out.exr", img)              // channels R, G, B
//	bgr, _ := exrarray.ImRead("out.exr", exrarray.WithLetters("BGR"))
//	r, _ := exrarray.ImRead("out.exr", exrarray.WithChannelNames("R")) // 2-D
//
// # Channel names
//
// Dense arrays carry no names. They are taken from WithChannelNames or
// WithLetters, or else from a Conventions table keyed by channel count
// (1: Y, 3: RGB, 4: RGBA by default). DefaultConventions is package state
// shared by every call that does not pass WithConventions.
//
// EXR stores channels sorted by name, whatever order they were written in.
// Write sorts explicitly before encoding; ImRead and Read restore the order
// the caller asks for. Structured arrays always read back sorted.
//
// # Errors
//
// Validation happens before any byte is written, and values are never
// converted implicitly: dtype and shape problems are errors. Output goes to
// a temporary file renamed into place, so a failed write leaves no partial
// file behind.
package exrarray
