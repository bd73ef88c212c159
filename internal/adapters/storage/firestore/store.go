package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/lifeline-agent/internal/adapters/storage/codec"
	"github.com/PabloGalante/lifeline-agent/internal/domain"
)

// Store keeps the device profile as one document in the "profiles" collection.
type Store struct {
	client *firestore.Client
	key    string
	now    func() time.Time
}

// NewStore creates a Firestore store.
// Uses the project passed (LIFELINE_GCP_PROJECT) and the slot key as document ID.
func NewStore(ctx context.Context, projectID, key string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, domain.E(domain.KindStorageUnavailable, "creating firestore client", err)
	}

	return &Store{client: client, key: key, now: time.Now}, nil
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) profileDocRef() *firestore.DocumentRef {
	return s.client.Collection("profiles").Doc(s.key)
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type contactDoc struct {
	ID          string `firestore:"id"`
	Name        string `firestore:"name"`
	PhoneNumber string `firestore:"phone_number"`
}

type conditionDoc struct {
	ID       string `firestore:"id"`
	Name     string `firestore:"name"`
	Selected bool   `firestore:"selected"`
}

type profileDoc struct {
	SchemaVersion int            `firestore:"schema_version"`
	Identity      string         `firestore:"identity"`
	Contacts      []contactDoc   `firestore:"emergency_contacts"`
	Conditions    []conditionDoc `firestore:"medical_conditions"`

	MedicalHistory string `firestore:"medical_history"`
	Allergies      string `firestore:"allergies"`
	Medications    string `firestore:"medications"`
	BloodType      string `firestore:"blood_type"`

	LocationPermission  bool      `firestore:"has_granted_location_permission"`
	OnboardingCompleted bool      `firestore:"has_completed_onboarding"`
	UpdatedAt           time.Time `firestore:"updated_at"`
}

func toDoc(p *domain.Profile, now time.Time) profileDoc {
	doc := profileDoc{
		SchemaVersion:       codec.SchemaVersion,
		Identity:            p.Identity,
		MedicalHistory:      p.MedicalNotes.MedicalHistory,
		Allergies:           p.MedicalNotes.Allergies,
		Medications:         p.MedicalNotes.Medications,
		BloodType:           p.MedicalNotes.BloodType,
		LocationPermission:  p.HasGrantedLocationPermission,
		OnboardingCompleted: p.HasCompletedOnboarding,
		UpdatedAt:           now,
	}
	for _, c := range p.EmergencyContacts {
		doc.Contacts = append(doc.Contacts, contactDoc{ID: string(c.ID), Name: c.Name, PhoneNumber: c.PhoneNumber})
	}
	for _, c := range p.MedicalConditions {
		doc.Conditions = append(doc.Conditions, conditionDoc{ID: string(c.ID), Name: c.Name, Selected: c.Selected})
	}
	return doc
}

func fromDoc(doc profileDoc) (*domain.Profile, error) {
	if doc.SchemaVersion > codec.SchemaVersion {
		return nil, domain.E(domain.KindCorruptData, "firestore decode profile",
			fmt.Errorf("unsupported schema_version %d", doc.SchemaVersion))
	}
	if len(doc.Contacts) > domain.MaxEmergencyContacts {
		return nil, domain.E(domain.KindCorruptData, "firestore decode profile",
			fmt.Errorf("%d contacts stored", len(doc.Contacts)))
	}

	p := &domain.Profile{
		Identity:          doc.Identity,
		EmergencyContacts: []domain.Contact{},
		MedicalNotes: domain.MedicalNotes{
			MedicalHistory: doc.MedicalHistory,
			Allergies:      doc.Allergies,
			Medications:    doc.Medications,
			BloodType:      doc.BloodType,
		},
		HasGrantedLocationPermission: doc.LocationPermission,
		HasCompletedOnboarding:       doc.OnboardingCompleted,
	}
	for _, c := range doc.Contacts {
		p.EmergencyContacts = append(p.EmergencyContacts, domain.Contact{
			ID:          domain.ContactID(c.ID),
			Name:        c.Name,
			PhoneNumber: c.PhoneNumber,
		})
	}
	for _, c := range doc.Conditions {
		p.MedicalConditions = append(p.MedicalConditions, domain.MedicalCondition{
			ID:       domain.ConditionID(c.ID),
			Name:     c.Name,
			Selected: c.Selected,
		})
	}
	if p.MedicalConditions == nil {
		p.MedicalConditions = domain.DefaultConditions()
	}
	return p, nil
}

// ─────────────────────────────────────────
// ProfileStore implementation
// ─────────────────────────────────────────

func (s *Store) Load(ctx context.Context) (*domain.Profile, error) {
	snap, err := s.profileDocRef().Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.Ef(domain.KindNotFound, "firestore load profile", "profile not found")
		}
		return nil, domain.E(domain.KindStorageUnavailable, "firestore load profile", err)
	}

	var doc profileDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, domain.E(domain.KindCorruptData, "firestore load profile decode", err)
	}
	return fromDoc(doc)
}

func (s *Store) Save(ctx context.Context, profile *domain.Profile) error {
	if profile == nil {
		return domain.Ef(domain.KindValidation, "firestore save profile", "profile is nil")
	}

	// Set without merge: the whole document is replaced.
	if _, err := s.profileDocRef().Set(ctx, toDoc(profile, s.now())); err != nil {
		return domain.E(domain.KindStorageUnavailable, "firestore save profile", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.profileDocRef().Delete(ctx); err != nil {
		return domain.E(domain.KindStorageUnavailable, "firestore clear profile", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
