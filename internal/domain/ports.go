package domain

import "context"

// ProfileStore persists the single device profile in one slot.
// Load returns ErrNotFound when the slot is empty and ErrCorruptData when the
// blob cannot be decoded; Save overwrites the whole slot.
type ProfileStore interface {
	Load(ctx context.Context) (*Profile, error)
	Save(ctx context.Context, profile *Profile) error
	Clear(ctx context.Context) error
}

// AdviceGateway is the boundary to the remote first-aid/diagnosis/translation service.
// Calls are never retried by implementations.
type AdviceGateway interface {
	DiagnoseFromText(ctx context.Context, description string, mode TextMode) (AdviceResult, error)
	DiagnoseFromImage(ctx context.Context, description string, image ImageData) (AdviceResult, error)
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// Alert is what reaches the emergency contacts.
type Alert struct {
	Location       Location  `json:"location"`
	MedicalSummary string    `json:"medicalSummary"`
	Contacts       []Contact `json:"contacts"`
}

// AlertDispatcher fires a best-effort notification. Not retried.
type AlertDispatcher interface {
	Dispatch(ctx context.Context, alert Alert) error
}

// LocationProvider supplies the current position. Denied access must be
// reported as ErrPermissionDenied.
type LocationProvider interface {
	Locate(ctx context.Context) (Location, error)
}
