package firestore

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/lifeline-agent/internal/domain"
)

func TestProfileDocRoundTrip(t *testing.T) {
	p := domain.NewProfile("ana@example.com")
	p.EmergencyContacts = []domain.Contact{
		{ID: "a", Name: "Mum", PhoneNumber: "+14155551234"},
		{ID: "b", Name: "Dad", PhoneNumber: "4155551234"},
	}
	p.MedicalConditions[2].Selected = true
	p.MedicalNotes = domain.MedicalNotes{Allergies: "penicillin", BloodType: "A-"}
	p.HasGrantedLocationPermission = true

	got, err := fromDoc(toDoc(p, time.Now()))
	require.NoError(t, err)
	if diff := cmp.Diff(p, got); diff != "" {
		t.Fatalf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestFromDocRejectsFutureSchema(t *testing.T) {
	_, err := fromDoc(profileDoc{SchemaVersion: 2})
	assert.ErrorIs(t, err, domain.ErrCorruptData)
}

func TestFromDocSeedsCatalog(t *testing.T) {
	got, err := fromDoc(profileDoc{SchemaVersion: 1, Identity: "x"})
	require.NoError(t, err)
	assert.Len(t, got.MedicalConditions, 5)
	assert.Empty(t, got.EmergencyContacts)
}
