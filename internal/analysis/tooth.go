package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ironsheep/cyst-tools-mcp/internal/imaging"
)

// Unknown is reported for tooth metadata that cannot be determined.
const Unknown = "unknown"

// ToothDescriptor identifies one tooth mask and its anatomical metadata.
//
// Descriptors are passed alongside masks explicitly; filename parsing is only
// a compatibility path for directories written with the
// tooth_<index>_FDI_<code>.png convention.
type ToothDescriptor struct {
	// File is the mask file name (no directory). Used for ordering.
	File string `json:"tooth_file"`

	// Path locates the mask for a MaskLoader.
	Path string `json:"-"`

	// Index is the detector's tooth index, or "unknown".
	Index string `json:"tooth_index"`

	// FDI is the two-digit FDI tooth code, or "unknown".
	FDI string `json:"fdi_number"`
}

// MaskLoader resolves a descriptor path to a decoded mask.
// *imaging.ImageCache satisfies it.
type MaskLoader interface {
	LoadMask(path string) (*imaging.BinaryMask, error)
}

// ParseToothFilename derives a descriptor from an underscore-delimited name
// such as "tooth_3_FDI_36.png": the index is the 2nd token, the FDI code the
// 4th. Missing tokens become "unknown".
func ParseToothFilename(name string) ToothDescriptor {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	parts := strings.Split(stem, "_")

	d := ToothDescriptor{File: base, Path: name, Index: Unknown, FDI: Unknown}
	if len(parts) > 1 && parts[1] != "" {
		d.Index = parts[1]
	}
	if len(parts) > 3 && parts[3] != "" {
		d.FDI = parts[3]
	}
	return d
}

// IsToothMaskFile reports whether name follows the tooth_*.png convention.
func IsToothMaskFile(name string) bool {
	return strings.HasPrefix(name, "tooth_") && strings.HasSuffix(name, ".png")
}

// ListToothMasks returns descriptors for every tooth_*.png file in dir,
// sorted by file name. Subdirectories are ignored.
func ListToothMasks(dir string) ([]ToothDescriptor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read tooth mask directory: %w", err)
	}

	var teeth []ToothDescriptor
	for _, e := range entries {
		if e.IsDir() || !IsToothMaskFile(e.Name()) {
			continue
		}
		teeth = append(teeth, ParseToothFilename(filepath.Join(dir, e.Name())))
	}
	SortDescriptors(teeth)
	return teeth, nil
}

// SortDescriptors orders descriptors by file name, the processing and
// drawing order of every multi-tooth operation.
func SortDescriptors(teeth []ToothDescriptor) {
	sort.SliceStable(teeth, func(i, j int) bool {
		return teeth[i].File < teeth[j].File
	})
}

// fdiByClass maps detector class ids 0..31 to FDI codes, quadrant by quadrant.
var fdiByClass = [32]int{
	11, 12, 13, 14, 15, 16, 17, 18,
	21, 22, 23, 24, 25, 26, 27, 28,
	31, 32, 33, 34, 35, 36, 37, 38,
	41, 42, 43, 44, 45, 46, 47, 48,
}

// FDIFromClassID converts a segmentation class id to its FDI code.
// Ids outside 0..31 map to "unknown".
func FDIFromClassID(classID int) string {
	if classID < 0 || classID >= len(fdiByClass) {
		return Unknown
	}
	return strconv.Itoa(fdiByClass[classID])
}

// NewToothDescriptor describes an explicitly supplied tooth mask. A negative
// index is unknown. An empty fdi is derived from classID; a negative classID
// leaves it unknown.
func NewToothDescriptor(path string, index int, fdi string, classID int) ToothDescriptor {
	d := ToothDescriptor{File: filepath.Base(path), Path: path, Index: Unknown, FDI: fdi}
	if index >= 0 {
		d.Index = strconv.Itoa(index)
	}
	if d.FDI == "" {
		d.FDI = FDIFromClassID(classID)
	}
	return d
}
