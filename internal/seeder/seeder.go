// Package seeder imports the mountain catalogue from a JSON export into the
// store. The export carries DBpedia-derived summit records; rows missing a
// timezone get one resolved from their coordinates so ascent date handling
// never has to guess.
package seeder

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/avolkau/summit-api/internal/config"
	"github.com/avolkau/summit-api/internal/model"
	"github.com/avolkau/summit-api/internal/tz"
)

// catalogueEntry is one record of the catalogue export.
type catalogueEntry struct {
	Source        string   `json:"source"`
	SourceID      string   `json:"sourceId"`
	Name          string   `json:"name"`
	Lat           float64  `json:"lat"`
	Lon           float64  `json:"lon"`
	Elevation     *float64 `json:"elevation"`
	Timezone      string   `json:"timezone"`
	WikipediaLink *string  `json:"wikipediaLink"`
	Abstract      *string  `json:"abstract"`
}

// Parser reads and validates a catalogue file.
type Parser struct {
	cfg      config.SeederConfig
	resolver tz.Resolver
}

// NewParser creates a catalogue parser. resolver may be nil, in which case
// entries without a timezone are rejected instead of resolved.
func NewParser(cfg config.SeederConfig, resolver tz.Resolver) *Parser {
	return &Parser{cfg: cfg, resolver: resolver}
}

// ParseMountains loads the catalogue file into mountain rows ready for bulk
// insert. Entries with out-of-range coordinates or an empty name are
// rejected; a single bad record fails the whole import so a truncated export
// is never half-applied.
func (p *Parser) ParseMountains() ([]model.Mountain, error) {
	data, err := os.ReadFile(p.cfg.CataloguePath)
	if err != nil {
		return nil, fmt.Errorf("reading catalogue %s: %w", p.cfg.CataloguePath, err)
	}

	var entries []catalogueEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing catalogue: %w", err)
	}

	mountains := make([]model.Mountain, 0, len(entries))
	for i, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("catalogue entry %d has no name", i)
		}
		if e.Lat < -90 || e.Lat > 90 || e.Lon < -180 || e.Lon > 180 {
			return nil, fmt.Errorf("catalogue entry %q has coordinates out of range", e.Name)
		}
		source := e.Source
		if source == "" {
			source = model.MountainSourceDBpedia
		}
		sourceID := e.SourceID
		if sourceID == "" {
			sourceID = e.Name
		}

		timezone := e.Timezone
		if timezone == "" {
			if p.resolver == nil {
				return nil, fmt.Errorf("catalogue entry %q has no timezone", e.Name)
			}
			timezone, err = p.resolver.Resolve(e.Lat, e.Lon)
			if err != nil {
				return nil, fmt.Errorf("resolving timezone for %q: %w", e.Name, err)
			}
		}

		mountains = append(mountains, model.Mountain{
			Source:        source,
			SourceID:      sourceID,
			Name:          e.Name,
			Lat:           e.Lat,
			Lon:           e.Lon,
			Elevation:     e.Elevation,
			Timezone:      timezone,
			WikipediaLink: e.WikipediaLink,
			Abstract:      e.Abstract,
		})
	}
	return mountains, nil
}
