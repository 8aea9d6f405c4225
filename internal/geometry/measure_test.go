package geometry

import (
	"image"
	"math"
	"testing"
)

func TestContourMeasurements_Rectangle(t *testing.T) {
	c := Contour{{5, 5}, {5, 9}, {14, 9}, {14, 5}}

	if got := ContourArea(c); got != 36 {
		t.Errorf("area: got %v, want 36", got)
	}
	if got := ContourPerimeter(c); got != 26 {
		t.Errorf("perimeter: got %v, want 26", got)
	}
	if got := ContourCentroid(c); got != (Centroid{X: 9.5, Y: 7}) {
		t.Errorf("centroid: got %+v, want {9.5 7}", got)
	}
	box := ContourBoundingBox(c)
	if box != (BoundingBox{X: 5, Y: 5, Width: 10, Height: 5}) {
		t.Errorf("bounding box: got %+v", box)
	}
	if box.Rect() != image.Rect(5, 5, 15, 10) {
		t.Errorf("Rect: got %v", box.Rect())
	}
}

func TestContourArea_OrientationIndependent(t *testing.T) {
	cw := Contour{{0, 0}, {4, 0}, {4, 3}, {0, 3}}
	ccw := Contour{{0, 0}, {0, 3}, {4, 3}, {4, 0}}
	if ContourArea(cw) != 12 || ContourArea(ccw) != 12 {
		t.Errorf("area: got %v and %v, want 12", ContourArea(cw), ContourArea(ccw))
	}
	if ContourCentroid(cw) != ContourCentroid(ccw) {
		t.Errorf("centroid differs by orientation: %+v vs %+v", ContourCentroid(cw), ContourCentroid(ccw))
	}
}

func TestContourMeasurements_Degenerate(t *testing.T) {
	tests := []struct {
		name      string
		contour   Contour
		perimeter float64
	}{
		{"empty", nil, 0},
		{"single point", Contour{{3, 3}}, 0},
		{"segment", Contour{{1, 1}, {4, 4}}, 2 * math.Hypot(3, 3)},
		{"collinear", Contour{{0, 0}, {2, 0}, {5, 0}}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContourArea(tt.contour); got != 0 {
				t.Errorf("area: got %v, want 0", got)
			}
			if got := ContourCentroid(tt.contour); got != (Centroid{}) {
				t.Errorf("centroid: got %+v, want zero", got)
			}
			if got := ContourPerimeter(tt.contour); math.Abs(got-tt.perimeter) > 1e-9 {
				t.Errorf("perimeter: got %v, want %v", got, tt.perimeter)
			}
		})
	}
}

func TestContourBoundingBox_Empty(t *testing.T) {
	if got := ContourBoundingBox(nil); got != (BoundingBox{}) {
		t.Errorf("got %+v, want zero box", got)
	}
}

func TestCircleMeasurements(t *testing.T) {
	c := ExtractOuterContours(createCircleMask(100, 100, 50, 50, 20))[0]

	area := ContourArea(c)
	if area != 1200 {
		t.Errorf("area: got %v, want 1200", area)
	}
	d := EquivalentDiameter(area)
	if math.Abs(d-40) > 2 {
		t.Errorf("equivalent diameter: got %v, want about 40", d)
	}
	cen := ContourCentroid(c)
	if math.Abs(cen.X-50) > 1e-9 || math.Abs(cen.Y-50) > 1e-9 {
		t.Errorf("centroid: got %+v, want {50 50}", cen)
	}
}

func TestEquivalentDiameter(t *testing.T) {
	tests := []struct {
		area float64
		want float64
	}{
		{0, 0},
		{-5, 0},
		{math.Pi, 2},
		{100 * math.Pi, 20},
	}

	for _, tt := range tests {
		if got := EquivalentDiameter(tt.area); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("EquivalentDiameter(%v) = %v, want %v", tt.area, got, tt.want)
		}
	}
}

func TestLargestContour(t *testing.T) {
	small := Contour{{0, 0}, {0, 2}, {2, 2}, {2, 0}}
	big := Contour{{0, 0}, {0, 5}, {5, 5}, {5, 0}}
	bigToo := Contour{{10, 10}, {10, 15}, {15, 15}, {15, 10}}

	tests := []struct {
		name     string
		contours []Contour
		want     int
	}{
		{"empty", nil, -1},
		{"single", []Contour{small}, 0},
		{"largest last", []Contour{small, big}, 1},
		{"tie keeps first", []Contour{small, big, bigToo}, 1},
		{"zero area only", []Contour{{{1, 1}}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LargestContour(tt.contours); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
