package profile

import (
	"regexp"
	"strings"

	"github.com/PabloGalante/lifeline-agent/internal/domain"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{10,14}$`)

// ValidPhoneNumber reports whether s is an optional "+" followed by 10-14 digits.
func ValidPhoneNumber(s string) bool {
	return phonePattern.MatchString(s)
}

func validateContact(op, name, phone string) error {
	if strings.TrimSpace(name) == "" {
		return domain.Ef(domain.KindValidation, op, "contact name is required")
	}
	if !ValidPhoneNumber(phone) {
		return domain.Ef(domain.KindValidation, op, "invalid phone number %q", phone)
	}
	return nil
}

// The functions below are pure: they never mutate their input and return a
// new profile. Persisting the result is the caller's job.

// AddContact appends a contact with a fresh id from newID.
func AddContact(p *domain.Profile, in domain.ContactInput, newID func() string) (*domain.Profile, error) {
	const op = "add contact"

	if len(p.EmergencyContacts) >= domain.MaxEmergencyContacts {
		return nil, domain.Ef(domain.KindCapacityExceeded, op, "at most %d emergency contacts", domain.MaxEmergencyContacts)
	}
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.PhoneNumber)
	if err := validateContact(op, name, phone); err != nil {
		return nil, err
	}

	out := p.Clone()
	out.EmergencyContacts = append(out.EmergencyContacts, domain.Contact{
		ID:          domain.ContactID(newID()),
		Name:        name,
		PhoneNumber: phone,
	})
	return out, nil
}

// UpdateContact replaces the contact with the same id, keeping its position.
func UpdateContact(p *domain.Profile, c domain.Contact) (*domain.Profile, error) {
	const op = "update contact"

	c.Name = strings.TrimSpace(c.Name)
	c.PhoneNumber = strings.TrimSpace(c.PhoneNumber)
	if err := validateContact(op, c.Name, c.PhoneNumber); err != nil {
		return nil, err
	}

	idx := indexOfContact(p, c.ID)
	if idx < 0 {
		return nil, domain.Ef(domain.KindNotFound, op, "contact %q not found", c.ID)
	}

	out := p.Clone()
	out.EmergencyContacts[idx] = c
	return out, nil
}

// RemoveContact drops the contact with id. An unknown id is NotFound, the
// same as UpdateContact and ToggleCondition.
func RemoveContact(p *domain.Profile, id domain.ContactID) (*domain.Profile, error) {
	idx := indexOfContact(p, id)
	if idx < 0 {
		return nil, domain.Ef(domain.KindNotFound, "remove contact", "contact %q not found", id)
	}

	out := p.Clone()
	out.EmergencyContacts = append(out.EmergencyContacts[:idx], out.EmergencyContacts[idx+1:]...)
	return out, nil
}

// ToggleCondition flips the selected flag of a catalog entry.
func ToggleCondition(p *domain.Profile, id domain.ConditionID) (*domain.Profile, error) {
	out := p.Clone()
	for i := range out.MedicalConditions {
		if out.MedicalConditions[i].ID == id {
			out.MedicalConditions[i].Selected = !out.MedicalConditions[i].Selected
			return out, nil
		}
	}
	return nil, domain.Ef(domain.KindNotFound, "toggle condition", "condition %q not found", id)
}

func indexOfContact(p *domain.Profile, id domain.ContactID) int {
	for i, c := range p.EmergencyContacts {
		if c.ID == id {
			return i
		}
	}
	return -1
}
