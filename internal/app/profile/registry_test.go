package profile_test

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/lifeline-agent/internal/app/profile"
	"github.com/PabloGalante/lifeline-agent/internal/domain"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestValidPhoneNumber(t *testing.T) {
	valid := []string{"+14155551234", "4155551234", "+12345678901234"}
	invalid := []string{"12345", "", "+1 415 555 1234", "415-555-1234", "+123456789012345", "abcdefghij"}

	for _, s := range valid {
		assert.True(t, profile.ValidPhoneNumber(s), s)
	}
	for _, s := range invalid {
		assert.False(t, profile.ValidPhoneNumber(s), s)
	}
}

func TestAddContactAppendsPreservingOrder(t *testing.T) {
	newID := sequentialIDs()
	p := domain.NewProfile("")

	for i, name := range []string{"Mum", "Dad", "Sis"} {
		next, err := profile.AddContact(p, domain.ContactInput{Name: name, PhoneNumber: "+14155551234"}, newID)
		require.NoError(t, err)
		require.Len(t, next.EmergencyContacts, i+1)
		assert.Equal(t, p.EmergencyContacts, next.EmergencyContacts[:i], "prior contacts must be untouched")
		assert.Equal(t, name, next.EmergencyContacts[i].Name)
		assert.Len(t, p.EmergencyContacts, i, "input profile must not be mutated")
		p = next
	}

	ids := map[domain.ContactID]bool{}
	for _, c := range p.EmergencyContacts {
		assert.False(t, ids[c.ID], "duplicate id %s", c.ID)
		ids[c.ID] = true
	}
}

func TestAddContactCapacity(t *testing.T) {
	p := domain.NewProfile("")
	p.EmergencyContacts = []domain.Contact{
		{ID: "a", Name: "A", PhoneNumber: "1234567890"},
		{ID: "b", Name: "B", PhoneNumber: "1234567890"},
		{ID: "c", Name: "C", PhoneNumber: "1234567890"},
	}
	before := p.Clone()

	_, err := profile.AddContact(p, domain.ContactInput{Name: "D", PhoneNumber: "+14155551234"}, sequentialIDs())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.Equal(t, before, p)
}

func TestAddContactValidation(t *testing.T) {
	p := domain.NewProfile("")

	_, err := profile.AddContact(p, domain.ContactInput{Name: "  ", PhoneNumber: "+14155551234"}, sequentialIDs())
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = profile.AddContact(p, domain.ContactInput{Name: "Mum", PhoneNumber: "12345"}, sequentialIDs())
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAddThenRemoveRoundTrip(t *testing.T) {
	starts := []*domain.Profile{domain.NewProfile("")}
	two := domain.NewProfile("x")
	two.EmergencyContacts = []domain.Contact{
		{ID: "a", Name: "A", PhoneNumber: "1234567890"},
		{ID: "b", Name: "B", PhoneNumber: "+1234567890"},
	}
	starts = append(starts, two)

	for _, start := range starts {
		added, err := profile.AddContact(start, domain.ContactInput{Name: "New", PhoneNumber: "+14155551234"}, sequentialIDs())
		require.NoError(t, err)
		newID := added.EmergencyContacts[len(added.EmergencyContacts)-1].ID

		removed, err := profile.RemoveContact(added, newID)
		require.NoError(t, err)
		if diff := cmp.Diff(start, removed); diff != "" {
			t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestUpdateContact(t *testing.T) {
	p := domain.NewProfile("")
	p.EmergencyContacts = []domain.Contact{
		{ID: "a", Name: "A", PhoneNumber: "1234567890"},
		{ID: "b", Name: "B", PhoneNumber: "1234567890"},
	}

	next, err := profile.UpdateContact(p, domain.Contact{ID: "a", Name: "Alice", PhoneNumber: "+14155551234"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", next.EmergencyContacts[0].Name)
	assert.Equal(t, domain.ContactID("b"), next.EmergencyContacts[1].ID)
	assert.Equal(t, "A", p.EmergencyContacts[0].Name)

	_, err = profile.UpdateContact(p, domain.Contact{ID: "zz", Name: "Z", PhoneNumber: "+14155551234"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = profile.UpdateContact(p, domain.Contact{ID: "a", Name: "A", PhoneNumber: "12345"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRemoveContactPreservesOrderAndRejectsUnknown(t *testing.T) {
	p := domain.NewProfile("")
	p.EmergencyContacts = []domain.Contact{
		{ID: "a", Name: "A", PhoneNumber: "1234567890"},
		{ID: "b", Name: "B", PhoneNumber: "1234567890"},
		{ID: "c", Name: "C", PhoneNumber: "1234567890"},
	}

	next, err := profile.RemoveContact(p, "b")
	require.NoError(t, err)
	require.Len(t, next.EmergencyContacts, 2)
	assert.Equal(t, domain.ContactID("a"), next.EmergencyContacts[0].ID)
	assert.Equal(t, domain.ContactID("c"), next.EmergencyContacts[1].ID)
	assert.Len(t, p.EmergencyContacts, 3)

	_, err = profile.RemoveContact(p, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestToggleCondition(t *testing.T) {
	p := domain.NewProfile("")

	next, err := profile.ToggleCondition(p, "3")
	require.NoError(t, err)
	assert.True(t, next.MedicalConditions[2].Selected)
	assert.False(t, p.MedicalConditions[2].Selected)
	assert.Len(t, next.MedicalConditions, 5)

	back, err := profile.ToggleCondition(next, "3")
	require.NoError(t, err)
	assert.False(t, back.MedicalConditions[2].Selected)

	_, err = profile.ToggleCondition(p, "42")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
