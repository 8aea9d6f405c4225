package redact

import (
	"math"
	"math/big"
)

// vertex is an integer point in window-local coordinates.
type vertex struct {
	x, y int64
}

// triangle holds counter-clockwise vertex indices plus its circumcircle,
// used to reject points quickly before the exact test.
type triangle struct {
	a, b, c    int
	cx, cy, r2 float64
}

type edge struct {
	a, b int
}

// exactLimit bounds coordinate differences for which the int64 predicates
// cannot overflow (12·d⁴ < 2⁶³).
const exactLimit = 29000

// triangulation is an incremental Bowyer–Watson Delaunay triangulation over
// integer points. The first three vertices form an enclosing super triangle.
type triangulation struct {
	verts []vertex
	tris  []triangle
	big   bool
}

// newTriangulation prepares a triangulation for points inside [0,w)×[0,h).
func newTriangulation(w, h int) *triangulation {
	m := int64(max(w, h) + 1)
	t := &triangulation{
		verts: []vertex{{-m, -m}, {5 * m, -m}, {-m, 5 * m}},
		big:   6*m >= exactLimit,
	}
	t.tris = []triangle{t.makeTriangle(0, 1, 2)}
	return t
}

func (t *triangulation) makeTriangle(a, b, c int) triangle {
	pa, pb, pc := t.verts[a], t.verts[b], t.verts[c]
	ax, ay := float64(pa.x), float64(pa.y)
	bx, by := float64(pb.x), float64(pb.y)
	cx, cy := float64(pc.x), float64(pc.y)

	d := 2 * (ax*(by-cy) + bx*(cy-ay) + cx*(ay-by))
	a2 := ax*ax + ay*ay
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	ux := (a2*(by-cy) + b2*(cy-ay) + c2*(ay-by)) / d
	uy := (a2*(cx-bx) + b2*(ax-cx) + c2*(bx-ax)) / d
	return triangle{a: a, b: b, c: c, cx: ux, cy: uy, r2: (ax-ux)*(ax-ux) + (ay-uy)*(ay-uy)}
}

// insert adds a point. Points must be distinct and inside the super triangle.
func (t *triangulation) insert(x, y int) {
	p := vertex{int64(x), int64(y)}
	pi := len(t.verts)
	t.verts = append(t.verts, p)

	boundary := make(map[edge]bool)
	kept := t.tris[:0]
	var cavity []triangle
	for _, tr := range t.tris {
		if t.inCircumcircle(tr, p) {
			cavity = append(cavity, tr)
			for _, e := range [3]edge{{tr.a, tr.b}, {tr.b, tr.c}, {tr.c, tr.a}} {
				boundary[e] = true
			}
			continue
		}
		kept = append(kept, tr)
	}
	t.tris = kept

	for _, tr := range cavity {
		for _, e := range [3]edge{{tr.a, tr.b}, {tr.b, tr.c}, {tr.c, tr.a}} {
			// Interior edges appear once in each direction.
			if boundary[edge{e.b, e.a}] {
				continue
			}
			if t.orient(e.a, e.b, p) <= 0 {
				continue
			}
			t.tris = append(t.tris, t.makeTriangle(e.a, e.b, pi))
		}
	}
}

// inCircumcircle reports whether p lies strictly inside the circumcircle
// of tr.
func (t *triangulation) inCircumcircle(tr triangle, p vertex) bool {
	dx := float64(p.x) - tr.cx
	dy := float64(p.y) - tr.cy
	d2 := dx*dx + dy*dy
	tol := 1e-9*tr.r2 + 1e-6
	if d2 > tr.r2+tol {
		return false
	}
	if d2 < tr.r2-tol {
		return true
	}
	return t.incircle(tr.a, tr.b, tr.c, p) > 0
}

func (t *triangulation) orient(a, b int, p vertex) int64 {
	pa, pb := t.verts[a], t.verts[b]
	return orient(pa, pb, p)
}

func orient(a, b, p vertex) int64 {
	return (b.x-a.x)*(p.y-a.y) - (b.y-a.y)*(p.x-a.x)
}

// incircle returns the sign of the in-circle determinant for the
// counter-clockwise triangle (a, b, c) and point p.
func (t *triangulation) incircle(a, b, c int, p vertex) int {
	pa, pb, pc := t.verts[a], t.verts[b], t.verts[c]
	if t.big {
		return incircleBig(pa, pb, pc, p)
	}
	adx, ady := pa.x-p.x, pa.y-p.y
	bdx, bdy := pb.x-p.x, pb.y-p.y
	cdx, cdy := pc.x-p.x, pc.y-p.y
	det := (adx*adx+ady*ady)*(bdx*cdy-cdx*bdy) +
		(bdx*bdx+bdy*bdy)*(cdx*ady-adx*cdy) +
		(cdx*cdx+cdy*cdy)*(adx*bdy-bdx*ady)
	switch {
	case det > 0:
		return 1
	case det < 0:
		return -1
	}
	return 0
}

func incircleBig(pa, pb, pc, p vertex) int {
	d := func(a, b int64) *big.Int { return big.NewInt(a - b) }
	adx, ady := d(pa.x, p.x), d(pa.y, p.y)
	bdx, bdy := d(pb.x, p.x), d(pb.y, p.y)
	cdx, cdy := d(pc.x, p.x), d(pc.y, p.y)

	lift := func(x, y *big.Int) *big.Int {
		r := new(big.Int).Mul(x, x)
		return r.Add(r, new(big.Int).Mul(y, y))
	}
	cross := func(x1, y1, x2, y2 *big.Int) *big.Int {
		r := new(big.Int).Mul(x1, y2)
		return r.Sub(r, new(big.Int).Mul(x2, y1))
	}

	det := new(big.Int).Mul(lift(adx, ady), cross(bdx, bdy, cdx, cdy))
	det.Add(det, new(big.Int).Mul(lift(bdx, bdy), cross(cdx, cdy, adx, ady)))
	det.Add(det, new(big.Int).Mul(lift(cdx, cdy), cross(adx, ady, bdx, bdy)))
	return det.Sign()
}

// triangles returns the final triangles, excluding any that touch the super
// triangle.
func (t *triangulation) triangles() [][3]vertex {
	out := make([][3]vertex, 0, len(t.tris))
	for _, tr := range t.tris {
		if tr.a < 3 || tr.b < 3 || tr.c < 3 {
			continue
		}
		out = append(out, [3]vertex{t.verts[tr.a], t.verts[tr.b], t.verts[tr.c]})
	}
	return out
}

// bounds returns the integer bounding box of a triangle.
func bounds(tri [3]vertex) (x0, y0, x1, y1 int) {
	minX := math.MaxInt
	minY := math.MaxInt
	maxX := math.MinInt
	maxY := math.MinInt
	for _, v := range tri {
		minX = min(minX, int(v.x))
		minY = min(minY, int(v.y))
		maxX = max(maxX, int(v.x))
		maxY = max(maxY, int(v.y))
	}
	return minX, minY, maxX, maxY
}
