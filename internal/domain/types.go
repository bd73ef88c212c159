package domain

type ContactID string
type ConditionID string

// MaxEmergencyContacts is the hard cap of contacts a profile may hold.
const MaxEmergencyContacts = 3

// Contact is a person notified on an extreme emergency.
type Contact struct {
	ID          ContactID `json:"id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phoneNumber"`
}

// ContactInput carries the user-editable fields of a new contact.
type ContactInput struct {
	Name        string
	PhoneNumber string
}

// MedicalCondition is an entry of the fixed condition catalog.
type MedicalCondition struct {
	ID       ConditionID `json:"id"`
	Name     string      `json:"name"`
	Selected bool        `json:"selected"`
}

// MedicalNotes holds the free-text medical details sent along with an alert.
type MedicalNotes struct {
	MedicalHistory string `json:"medicalHistory,omitempty"`
	Allergies      string `json:"allergies,omitempty"`
	Medications    string `json:"medications,omitempty"`
	BloodType      string `json:"bloodType,omitempty"`
}

// Profile is the single per-device emergency profile.
type Profile struct {
	Identity          string             `json:"identity,omitempty"`
	EmergencyContacts []Contact          `json:"emergencyContacts"`
	MedicalConditions []MedicalCondition `json:"medicalConditions"`
	MedicalNotes      MedicalNotes       `json:"medicalNotes"`

	HasGrantedLocationPermission bool `json:"hasGrantedLocationPermission"`
	HasCompletedOnboarding       bool `json:"hasCompletedOnboarding"`
}

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DefaultConditions returns a fresh copy of the seeded condition catalog.
func DefaultConditions() []MedicalCondition {
	return []MedicalCondition{
		{ID: "1", Name: "Asthma"},
		{ID: "2", Name: "Diabetes"},
		{ID: "3", Name: "Heart Condition"},
		{ID: "4", Name: "Epilepsy"},
		{ID: "5", Name: "Allergies"},
	}
}

// NewProfile builds the profile created on first sign-in.
func NewProfile(identity string) *Profile {
	return &Profile{
		Identity:          identity,
		EmergencyContacts: []Contact{},
		MedicalConditions: DefaultConditions(),
	}
}

// Clone returns a deep copy so callers can transform profiles without aliasing.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	out := *p
	out.EmergencyContacts = append(make([]Contact, 0, len(p.EmergencyContacts)), p.EmergencyContacts...)
	out.MedicalConditions = append(make([]MedicalCondition, 0, len(p.MedicalConditions)), p.MedicalConditions...)
	return &out
}

// SelectedConditions lists the names of the conditions the user ticked, in catalog order.
func (p *Profile) SelectedConditions() []string {
	var names []string
	for _, c := range p.MedicalConditions {
		if c.Selected {
			names = append(names, c.Name)
		}
	}
	return names
}
