package codec_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/lifeline-agent/internal/adapters/storage/codec"
	"github.com/PabloGalante/lifeline-agent/internal/domain"
)

func TestEncodeWritesSchemaVersion(t *testing.T) {
	b, err := codec.Encode(domain.NewProfile("ana@example.com"))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.EqualValues(t, codec.SchemaVersion, raw["schemaVersion"])
	assert.Equal(t, "ana@example.com", raw["identity"])
	assert.Contains(t, raw, "emergencyContacts")
}

func TestDecodeRoundTrip(t *testing.T) {
	p := domain.NewProfile("+14155551234")
	p.EmergencyContacts = append(p.EmergencyContacts, domain.Contact{ID: "c1", Name: "Mum", PhoneNumber: "+14155550000"})
	p.MedicalConditions[1].Selected = true
	p.MedicalNotes.BloodType = "O+"
	p.HasCompletedOnboarding = true

	b, err := codec.Encode(p)
	require.NoError(t, err)

	got, err := codec.Decode(b)
	require.NoError(t, err)
	if diff := cmp.Diff(p, got); diff != "" {
		t.Fatalf("decoded profile mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeLegacyBlobWithoutVersion(t *testing.T) {
	legacy := `{"email":"x@y.z","emergencyContacts":[{"id":"1700000000000","name":"Bob","phoneNumber":"5551234567"}],
		"medicalConditions":[{"id":"1","name":"Asthma","selected":true}],
		"hasGrantedLocationPermission":true,"hasCompletedOnboarding":false}`

	got, err := codec.Decode([]byte(legacy))
	require.NoError(t, err)
	require.Len(t, got.EmergencyContacts, 1)
	assert.Equal(t, "Bob", got.EmergencyContacts[0].Name)
	assert.True(t, got.HasGrantedLocationPermission)
	assert.Equal(t, []string{"Asthma"}, got.SelectedConditions())
}

func TestDecodeRejectsBadBlobs(t *testing.T) {
	cases := map[string]string{
		"not json":       `{"emergencyContacts": [`,
		"future version": `{"schemaVersion": 99, "emergencyContacts": []}`,
		"wrong type":     `{"emergencyContacts": "nope"}`,
		"null":           `null`,
		"padded null":    " null\n",
		"array":          `[]`,
		"empty":          ``,
		"too many contacts": `{"emergencyContacts": [
			{"id":"1","name":"a","phoneNumber":"1234567890"},
			{"id":"2","name":"b","phoneNumber":"1234567890"},
			{"id":"3","name":"c","phoneNumber":"1234567890"},
			{"id":"4","name":"d","phoneNumber":"1234567890"}]}`,
	}

	for name, blob := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Decode([]byte(blob))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrCorruptData)
		})
	}
}
