// Package gpx turns an uploaded GPX file into the inputs for activity
// creation: a flattened 2-D GeoJSON path, the track name, and the recorded
// start instant when the file has one.
package gpx

import (
	"fmt"
	"io"
	"time"

	"github.com/twpayne/go-gpx"

	"github.com/avolkau/summit-api/internal/geo"
)

// MaxUploadBytes caps GPX uploads. Multi-day tracks stay well below this.
const MaxUploadBytes = 10 << 20

// Track is the distilled content of an uploaded GPX file.
type Track struct {
	Name string
	// PathGeoJSON is the merged track geometry as a GeoJSON LineString.
	// Elevation values from the file are dropped; summit elevation comes
	// from the catalogue, not from barometric noise in consumer devices.
	PathGeoJSON string
	// StartedAt is the timestamp of the first track point, nil when the
	// file carries no timing data.
	StartedAt *time.Time
}

// Parse reads one GPX document. Files with more than one track are rejected;
// a multi-track file is almost always several outings exported together and
// must be split client-side so each gets its own date and correlation run.
// Segments within the single track are concatenated in order.
func Parse(r io.Reader) (*Track, error) {
	doc, err := gpx.Read(r)
	if err != nil {
		return nil, fmt.Errorf("invalid GPX document: %w", err)
	}
	if len(doc.Trk) == 0 {
		return nil, fmt.Errorf("GPX document contains no track")
	}
	if len(doc.Trk) > 1 {
		return nil, fmt.Errorf("GPX document contains %d tracks, want exactly 1", len(doc.Trk))
	}
	trk := doc.Trk[0]

	var coords [][2]float64
	var started *time.Time
	for _, seg := range trk.TrkSeg {
		for _, pt := range seg.TrkPt {
			coords = append(coords, [2]float64{pt.Lon, pt.Lat})
			if started == nil && !pt.Time.IsZero() {
				t := pt.Time.UTC()
				started = &t
			}
		}
	}
	if len(coords) < 2 {
		return nil, fmt.Errorf("track has %d points, want at least 2", len(coords))
	}

	path, err := geo.MarshalLineString(geo.NewLineString(coords))
	if err != nil {
		return nil, fmt.Errorf("encoding track path: %w", err)
	}

	return &Track{
		Name:        trk.Name,
		PathGeoJSON: path,
		StartedAt:   started,
	}, nil
}
