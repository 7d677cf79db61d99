// Package geo holds the great-circle math and GeoJSON handling shared by the
// sqlite store implementation and the ingest validation path. PostGIS does the
// equivalent work for the postgres store.
package geo

import (
	"fmt"
	"math"

	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

const earthRadiusM = 6371000.0

// HaversineM returns the great-circle distance between two points in meters.
func HaversineM(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)
	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

// ParseLineString decodes a GeoJSON geometry and requires it to be a
// LineString with at least two positions. Coordinates beyond lon/lat are
// accepted and preserved.
func ParseLineString(data []byte) (*geom.LineString, error) {
	var g geom.T
	if err := geojson.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("invalid GeoJSON geometry: %w", err)
	}
	ls, ok := g.(*geom.LineString)
	if !ok {
		return nil, fmt.Errorf("geometry is %T, want LineString", g)
	}
	if ls.NumCoords() < 2 {
		return nil, fmt.Errorf("LineString has %d positions, want at least 2", ls.NumCoords())
	}
	return ls, nil
}

// MarshalLineString encodes a LineString back to GeoJSON.
func MarshalLineString(ls *geom.LineString) (string, error) {
	b, err := geojson.Marshal(ls)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// NewLineString builds a 2-D LineString from lon/lat pairs.
func NewLineString(coords [][2]float64) *geom.LineString {
	cs := make([]geom.Coord, len(coords))
	for i, c := range coords {
		cs[i] = geom.Coord{c[0], c[1]}
	}
	return geom.NewLineString(geom.XY).MustSetCoords(cs)
}

// MinDistanceToLineM returns the minimum great-circle distance in meters from
// a point to a LineString. Each segment is evaluated on a local tangent-plane
// projection, which is accurate to well under a meter at the sub-kilometer
// scales the correlation radius operates at.
func MinDistanceToLineM(ls *geom.LineString, lat, lon float64) float64 {
	min := math.MaxFloat64
	n := ls.NumCoords()
	for i := 0; i < n-1; i++ {
		a := ls.Coord(i)
		b := ls.Coord(i + 1)
		d := distanceToSegmentM(lat, lon, a[1], a[0], b[1], b[0])
		if d < min {
			min = d
		}
	}
	return min
}

// distanceToSegmentM projects the three points onto a plane tangent at the
// query point and measures point-to-segment distance there.
func distanceToSegmentM(plat, plon, alat, alon, blat, blon float64) float64 {
	cosLat := math.Cos(plat * math.Pi / 180.0)
	mPerDegLat := earthRadiusM * math.Pi / 180.0
	mPerDegLon := mPerDegLat * cosLat

	ax := (alon - plon) * mPerDegLon
	ay := (alat - plat) * mPerDegLat
	bx := (blon - plon) * mPerDegLon
	by := (blat - plat) * mPerDegLat

	dx := bx - ax
	dy := by - ay
	segLenSq := dx*dx + dy*dy
	if segLenSq == 0 {
		return math.Hypot(ax, ay)
	}
	// Closest point on the segment to the origin (the query point).
	t := -(ax*dx + ay*dy) / segLenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(ax+t*dx, ay+t*dy)
}
