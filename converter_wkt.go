package osmfusion

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// laneletPolygon returns lanelet outline in WGS84: left bound followed by reversed right bound
func laneletPolygon(ll *Lanelet) orb.Polygon {
	left, right := ll.LeftBound(), ll.RightBound()
	ring := make(orb.Ring, 0, left.Len()+right.Len()+1)
	for i := 0; i < left.Len(); i++ {
		ring = append(ring, pointToSpherical(left.At(i).Coord.XY()))
	}
	for i := right.Len() - 1; i >= 0; i-- {
		ring = append(ring, pointToSpherical(right.At(i).Coord.XY()))
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return orb.Polygon{ring}
}

// PrepareWKTPolygon returns WKT representation of lanelet outline
func PrepareWKTPolygon(ll *Lanelet) string {
	return wkt.MarshalString(laneletPolygon(ll))
}

// PrepareWKTLinestring returns WKT representation of the curve in WGS84
func PrepareWKTLinestring(curve *Curve) string {
	return wkt.MarshalString(lineToSpherical(curve.LineString()))
}
