// Package tz maps geographic points to IANA timezone identifiers.
package tz

import (
	"fmt"

	"github.com/ringsaturn/tzf"
)

// Resolver looks up the timezone a point falls in.
type Resolver interface {
	Resolve(lat, lon float64) (string, error)
}

type tzfResolver struct {
	finder tzf.F
}

// NewResolver builds a Resolver backed by the embedded tzf polygon data.
func NewResolver() (Resolver, error) {
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("init timezone finder: %w", err)
	}
	return &tzfResolver{finder: finder}, nil
}

func (r *tzfResolver) Resolve(lat, lon float64) (string, error) {
	name := r.finder.GetTimezoneName(lon, lat)
	if name == "" {
		return "", fmt.Errorf("no timezone found for (%f, %f)", lat, lon)
	}
	return name, nil
}
