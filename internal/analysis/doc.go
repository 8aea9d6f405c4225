// Package analysis implements the lesion metrics and root-overlap scoring
// engine for dental radiograph masks.
//
// Every operation is a pure function of its inputs: masks are read, never
// mutated, and nothing is cached between calls. Whole-operation failures are
// returned as *Error values carrying an ErrorKind; per-tooth failures in a
// batch are skipped and counted.
//
// Measurements are in pixels, with millimeter fields derived from a fixed
// linear scale (MMPerPixel). Percentages in results are rounded to two
// decimals; severity is classified before rounding.
package analysis
