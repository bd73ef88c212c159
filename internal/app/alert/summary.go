package alert

import (
	"fmt"
	"strings"

	"github.com/PabloGalante/lifeline-agent/internal/domain"
)

const notAvailable = "N/A"

// MedicalSummary renders the profile's medical information as one line for
// the alert message. Empty fields read N/A.
func MedicalSummary(p *domain.Profile) string {
	orNA := func(s string) string {
		if s = strings.TrimSpace(s); s == "" {
			return notAvailable
		}
		return s
	}

	conditions := notAvailable
	if selected := p.SelectedConditions(); len(selected) > 0 {
		conditions = strings.Join(selected, ", ")
	}

	n := p.MedicalNotes
	return fmt.Sprintf("Medical History: %s, Allergies: %s, Medications: %s, Blood Type: %s, Conditions: %s",
		orNA(n.MedicalHistory), orNA(n.Allergies), orNA(n.Medications), orNA(n.BloodType), conditions)
}
