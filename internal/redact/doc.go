// Package redact removes lesions from radiographs.
//
// RedactLesion supports three replacement methods: linear interpolation
// from the surrounding tissue, a Gaussian blur of the lesion area, and a
// flat color fill. The source image is cloned; callers own persistence.
package redact
