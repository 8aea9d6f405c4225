// Package overlay draws severity-colored tooth outlines and overlap labels
// on a radiograph.
package overlay
