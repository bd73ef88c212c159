// Package location provides server-side LocationProviders. A device client
// normally sends its own coordinates; these cover the CLI and kiosk setups.
package location

import (
	"context"

	"github.com/PabloGalante/lifeline-agent/internal/domain"
)

// Static always reports the configured coordinates.
type Static struct {
	loc domain.Location
}

func NewStatic(lat, lng float64) *Static {
	return &Static{loc: domain.Location{Lat: lat, Lng: lng}}
}

func (s *Static) Locate(context.Context) (domain.Location, error) {
	return s.loc, nil
}

// Unavailable is used when no position source is configured.
type Unavailable struct{}

func (Unavailable) Locate(context.Context) (domain.Location, error) {
	return domain.Location{}, domain.Ef(domain.KindPermissionDenied, "locate", "no location source configured")
}
