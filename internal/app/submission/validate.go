package submission

import (
	"strings"

	"github.com/PabloGalante/lifeline-agent/internal/domain"
)

// Validate rejects a request before any remote call is made.
func Validate(req domain.SubmissionRequest) error {
	const op = "validate submission"

	if _, ok := domain.LanguageName(req.Language()); !ok {
		return domain.Ef(domain.KindValidation, op, "unsupported language %q", req.TargetLanguage)
	}

	switch in := req.Input.(type) {
	case nil:
		return domain.Ef(domain.KindValidation, op, "no input")
	case domain.TextInput:
		if strings.TrimSpace(in.Description) == "" {
			return domain.Ef(domain.KindValidation, op, "please describe the emergency")
		}
	case domain.VoiceInput:
		if strings.TrimSpace(in.Transcript) == "" {
			return domain.Ef(domain.KindValidation, op, "voice transcript is empty")
		}
	case domain.ImageInput:
		// The description is optional for photos.
		if err := in.Image.Validate(); err != nil {
			return domain.E(domain.KindValidation, op, err)
		}
	}
	return nil
}
