// Package alert implements the extreme-emergency action: one alert with the
// user's position and medical summary sent to all emergency contacts.
package alert

import (
	"context"
	"errors"
	"time"

	"github.com/PabloGalante/lifeline-agent/internal/domain"
	"github.com/PabloGalante/lifeline-agent/internal/observability"
)

// ProfileReader is satisfied by profile.Service.
type ProfileReader interface {
	Current(ctx context.Context) (*domain.Profile, error)
}

type Request struct {
	// Location, when set, is the position reported by the device.
	Location *domain.Location
}

type Service struct {
	profiles   ProfileReader
	locator    domain.LocationProvider
	dispatcher domain.AlertDispatcher
}

func NewService(profiles ProfileReader, locator domain.LocationProvider, dispatcher domain.AlertDispatcher) *Service {
	return &Service{profiles: profiles, locator: locator, dispatcher: dispatcher}
}

// Trigger sends a single alert. It is not retried on failure.
func (s *Service) Trigger(ctx context.Context, req Request) (domain.Alert, error) {
	const op = "trigger alert"
	log := observability.LoggerFromContext(ctx)
	start := time.Now()

	p, err := s.profiles.Current(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Alert{}, domain.E(domain.KindSetupRequired, op, err)
		}
		return domain.Alert{}, err
	}
	if len(p.EmergencyContacts) == 0 {
		return domain.Alert{}, domain.Ef(domain.KindNoContacts, op, "profile has no emergency contacts")
	}

	loc, err := s.locate(ctx, p, req)
	if err != nil {
		log.Warn("alert location unavailable", "error", err)
		return domain.Alert{}, err
	}

	a := domain.Alert{
		Location:       loc,
		MedicalSummary: MedicalSummary(p),
		Contacts:       append([]domain.Contact(nil), p.EmergencyContacts...),
	}

	if err := s.dispatcher.Dispatch(ctx, a); err != nil {
		log.Error("alert dispatch failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return domain.Alert{}, domain.E(domain.KindAlertFailed, op, err)
	}

	log.Info("alert sent", "contacts", len(a.Contacts), "elapsed_ms", time.Since(start).Milliseconds())
	return a, nil
}

func (s *Service) locate(ctx context.Context, p *domain.Profile, req Request) (domain.Location, error) {
	const op = "locate"

	if req.Location != nil {
		return *req.Location, nil
	}
	if !p.HasGrantedLocationPermission {
		return domain.Location{}, domain.Ef(domain.KindPermissionDenied, op, "location permission not granted")
	}

	loc, err := s.locator.Locate(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrPermissionDenied) {
			return domain.Location{}, err
		}
		return domain.Location{}, domain.E(domain.KindPermissionDenied, op, err)
	}
	return loc, nil
}
