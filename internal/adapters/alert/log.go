// Package alert holds the emergency alert dispatchers.
package alert

import (
	"context"
	"fmt"

	"github.com/PabloGalante/lifeline-agent/internal/domain"
	"github.com/PabloGalante/lifeline-agent/internal/observability"
)

// MapsURL links to the alert location on Google Maps.
func MapsURL(loc domain.Location) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%f,%f", loc.Lat, loc.Lng)
}

// LogDispatcher writes the alert to the structured log. It is the dev
// backend: nothing leaves the process.
type LogDispatcher struct{}

func NewLogDispatcher() *LogDispatcher { return &LogDispatcher{} }

func (d *LogDispatcher) Dispatch(ctx context.Context, a domain.Alert) error {
	names := make([]string, 0, len(a.Contacts))
	for _, c := range a.Contacts {
		names = append(names, c.Name)
	}

	observability.LoggerFromContext(ctx).Warn("EMERGENCY ALERT",
		"lat", a.Location.Lat,
		"lng", a.Location.Lng,
		"maps_url", MapsURL(a.Location),
		"medical_summary", a.MedicalSummary,
		"contacts", names,
	)
	return nil
}
