package osmfusion

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// angleBetweenLines returs angle between two lines
//
// Note: panics if number of points in any line is less than 2
//
func angleBetweenLines(l1 orb.LineString, l2 orb.LineString) float64 {
	angle1 := math.Atan2(l1[len(l1)-1].Y()-l1[0].Y(), l1[len(l1)-1].X()-l1[0].X())
	angle2 := math.Atan2(l2[len(l2)-1].Y()-l2[0].Y(), l2[len(l2)-1].X()-l2[0].X())
	angle := angle2 - angle1
	if angle < -1*math.Pi {
		angle += 2 * math.Pi
	}
	if angle > math.Pi {
		angle -= 2 * math.Pi
	}
	return angle
}

// findSegment2D returns index of the segment which given point is in between.
// Each segment is treated as a line y = m*x + t and the segment with the least vertical deviation wins.
//
// Note: it is not a true point-to-segment distance. Vertical segments produce NaN deviation and never beat an earlier segment
//
func findSegment2D(pt Coord, line []Coord) int {
	if len(line) < 2 {
		return 0
	}
	diff := make([]float64, len(line)-1)
	for i := 0; i < len(line)-1; i++ {
		m := (line[i+1].Y - line[i].Y) / (line[i+1].X - line[i].X)
		t := line[i].Y - m*line[i].X
		diff[i] = math.Abs(pt.Y - (m*pt.X + t))
	}
	best := 0
	for i := 1; i < len(diff); i++ {
		if diff[i] < diff[best] {
			best = i
		}
	}
	return best
}

// projectOnSegment returns closest point on segment [p, q] for given point (3D)
func projectOnSegment(p, q, pt Coord) Coord {
	dx, dy, dz := q.X-p.X, q.Y-p.Y, q.Z-p.Z
	lengthSq := dx*dx + dy*dy + dz*dz
	if lengthSq == 0 {
		return p
	}
	fraction := ((pt.X-p.X)*dx + (pt.Y-p.Y)*dy + (pt.Z-p.Z)*dz) / lengthSq
	fraction = math.Max(0, math.Min(1, fraction))
	return pointOnSegmentByFraction(p, q, fraction)
}

// projectOnLine returns closest point on polyline for given point (3D)
func projectOnLine(line []Coord, pt Coord) Coord {
	if len(line) == 0 {
		return pt
	}
	if len(line) == 1 {
		return line[0]
	}
	best := line[0]
	bestDist := math.Inf(1)
	for i := 1; i < len(line); i++ {
		candidate := projectOnSegment(line[i-1], line[i], pt)
		dist := candidate.Distance(pt)
		if dist < bestDist {
			best = candidate
			bestDist = dist
		}
	}
	return best
}

// pointOnSegmentByFraction returns a point on given segment using fraction of its length
func pointOnSegmentByFraction(p, q Coord, fraction float64) Coord {
	return Coord{
		X: (1-fraction)*p.X + (fraction * q.X),
		Y: (1-fraction)*p.Y + (fraction * q.Y),
		Z: (1-fraction)*p.Z + (fraction * q.Z),
	}
}

// interpolateAtDistance returns point of the line at given planar distance from its start. Distance is clamped to the line length
func interpolateAtDistance(line []Coord, distance float64) Coord {
	if len(line) == 0 {
		return Coord{}
	}
	if distance <= 0 || len(line) == 1 {
		return line[0]
	}
	cl := 0.0
	for i := 1; i < len(line); i++ {
		tmpDist := planar.Distance(line[i-1].XY(), line[i].XY())
		if tmpDist > 0 && distance <= cl+tmpDist {
			return pointOnSegmentByFraction(line[i-1], line[i], (distance-cl)/tmpDist)
		}
		cl += tmpDist
	}
	return line[len(line)-1]
}

// coordsToLineString returns planar representation of coordinates
func coordsToLineString(coords []Coord) orb.LineString {
	line := make(orb.LineString, len(coords))
	for i, c := range coords {
		line[i] = c.XY()
	}
	return line
}
