// Package imaging provides the raster primitives the cyst analysis engine is
// built on.
//
// This package implements mask and image I/O (decode, path-keyed caching,
// PNG encoding), the BinaryMask type with its set operations, and the drawing
// helpers used by the overlay renderer. All operations work with standard Go
// image.Image types and use a coordinate system where (0,0) is at the
// top-left corner, X increases rightward, and Y increases downward.
//
// # Masks
//
// A BinaryMask is produced by thresholding a raster: any pixel whose 8-bit
// grayscale value is nonzero is foreground. Masks are always anchored at the
// origin. Operations that combine two masks require identical dimensions and
// return ErrDimensionMismatch otherwise.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Mask operations never
// mutate their inputs and can be called concurrently. Drawing helpers write
// to the destination image and must not share a destination across
// goroutines.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - File I/O errors during image loading
//   - Undecodable raster data
//   - Mismatched mask dimensions
//   - Encoding errors during image output
package imaging
