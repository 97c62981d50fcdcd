package osmfusion

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

type PointID int64

// Coord is a plain 3D coordinate without identity
type Coord struct {
	X float64
	Y float64
	Z float64
}

// XY returns planar part of coordinate
func (c Coord) XY() orb.Point {
	return orb.Point{c.X, c.Y}
}

// Distance returns 3D euclidean distance
func (c Coord) Distance(other Coord) float64 {
	dx := c.X - other.X
	dy := c.Y - other.Y
	dz := c.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// String returns pretty printed value for Coord
func (c Coord) String() string {
	return fmt.Sprintf("X: %f | Y: %f | Z: %f", c.X, c.Y, c.Z)
}

// midCoord returns middle coordinate between two given ones
func midCoord(a, b Coord) Coord {
	return Coord{
		X: (a.X + b.X) / 2.0,
		Y: (a.Y + b.Y) / 2.0,
		Z: (a.Z + b.Z) / 2.0,
	}
}

// Point is a map vertex. Two points are the same if and only if their IDs are equal
type Point struct {
	ID         PointID
	Coord      Coord
	Attributes Attributes
}

// NewPoint creates point with empty attributes
func NewPoint(id PointID, x, y, z float64) *Point {
	return &Point{
		ID:         id,
		Coord:      Coord{X: x, Y: y, Z: z},
		Attributes: make(Attributes),
	}
}

// Same checks identity of two points
func (pt *Point) Same(other *Point) bool {
	if pt == nil || other == nil {
		return pt == other
	}
	return pt.ID == other.ID
}
