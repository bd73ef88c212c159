// Package codec owns the persisted profile blob format shared by the slot stores.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/PabloGalante/lifeline-agent/internal/domain"
)

// SchemaVersion is written into every blob. Blobs without the field predate
// versioning and are read as version 1.
const SchemaVersion = 1

type envelope struct {
	SchemaVersion int `json:"schemaVersion"`
	*domain.Profile
}

// Encode serializes a profile into the versioned blob.
func Encode(p *domain.Profile) ([]byte, error) {
	if p == nil {
		return nil, domain.Ef(domain.KindValidation, "encode profile", "profile is nil")
	}
	b, err := json.Marshal(envelope{SchemaVersion: SchemaVersion, Profile: p})
	if err != nil {
		return nil, domain.E(domain.KindInternal, "encode profile", err)
	}
	return b, nil
}

// Decode parses a blob. Any parse failure or unknown future version is CorruptData.
func Decode(b []byte) (*domain.Profile, error) {
	// null, arrays and scalars unmarshal without error but carry no profile.
	if trimmed := bytes.TrimSpace(b); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, domain.Ef(domain.KindCorruptData, "decode profile", "blob is not a JSON object")
	}

	env := envelope{Profile: &domain.Profile{}}
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, domain.E(domain.KindCorruptData, "decode profile", err)
	}

	switch {
	case env.SchemaVersion == 0, env.SchemaVersion == SchemaVersion:
	default:
		return nil, domain.E(domain.KindCorruptData, "decode profile",
			fmt.Errorf("unsupported schemaVersion %d", env.SchemaVersion))
	}

	p := env.Profile
	if len(p.EmergencyContacts) > domain.MaxEmergencyContacts {
		return nil, domain.E(domain.KindCorruptData, "decode profile",
			fmt.Errorf("%d contacts stored, max is %d", len(p.EmergencyContacts), domain.MaxEmergencyContacts))
	}
	if p.EmergencyContacts == nil {
		p.EmergencyContacts = []domain.Contact{}
	}
	if p.MedicalConditions == nil {
		p.MedicalConditions = domain.DefaultConditions()
	}
	return p, nil
}
