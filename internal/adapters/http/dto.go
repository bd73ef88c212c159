package httpadapter

import (
	"strings"

	alertadapter "github.com/PabloGalante/lifeline-agent/internal/adapters/alert"
	"github.com/PabloGalante/lifeline-agent/internal/app/profile"
	"github.com/PabloGalante/lifeline-agent/internal/app/submission"
	"github.com/PabloGalante/lifeline-agent/internal/domain"
)

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type signInRequest struct {
	Identity string `json:"identity"`
}

type patchProfileRequest struct {
	Identity                     *string              `json:"identity,omitempty"`
	MedicalNotes                 *domain.MedicalNotes `json:"medicalNotes,omitempty"`
	HasGrantedLocationPermission *bool                `json:"hasGrantedLocationPermission,omitempty"`
	HasCompletedOnboarding       *bool                `json:"hasCompletedOnboarding,omitempty"`
}

func (r patchProfileRequest) toPatch() profile.Patch {
	return profile.Patch{
		Identity:                     r.Identity,
		MedicalNotes:                 r.MedicalNotes,
		HasGrantedLocationPermission: r.HasGrantedLocationPermission,
		HasCompletedOnboarding:       r.HasCompletedOnboarding,
	}
}

type contactRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

type submissionRequest struct {
	// Type is text, voice or image.
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Transcript  string `json:"transcript,omitempty"`
	// Image is a data:<mime>;base64,<data> URI.
	Image    string `json:"image,omitempty"`
	Language string `json:"language,omitempty"`
}

func (r submissionRequest) toDomain() (domain.SubmissionRequest, error) {
	req := domain.SubmissionRequest{TargetLanguage: r.Language}

	switch domain.InputKind(strings.ToLower(strings.TrimSpace(r.Type))) {
	case domain.InputText, "":
		req.Input = domain.TextInput{Description: r.Description}
	case domain.InputVoice:
		req.Input = domain.VoiceInput{Transcript: r.Transcript}
	case domain.InputImage:
		var img domain.ImageData
		if r.Image != "" {
			parsed, err := domain.ParseDataURI(r.Image)
			if err != nil {
				return req, err
			}
			img = parsed
		}
		req.Input = domain.ImageInput{Description: r.Description, Image: img}
	default:
		return req, domain.Ef(domain.KindValidation, "decode submission", "unknown type %q", r.Type)
	}
	return req, nil
}

type adviceResponse struct {
	Diagnosis            string `json:"diagnosis"`
	FirstAidInstructions string `json:"firstAidInstructions"`
	Severity             string `json:"severity"`
	SeverityLabel        string `json:"severityLabel"`
}

type submissionResponse struct {
	State       submission.State    `json:"state"`
	Path        submission.Path     `json:"path,omitempty"`
	Language    string              `json:"language,omitempty"`
	Translated  bool                `json:"translated"`
	Result      *adviceResponse     `json:"result,omitempty"`
	Notices     []submission.Notice `json:"notices"`
	Error       *errorBody          `json:"error,omitempty"`
	Transitions []submission.State  `json:"transitions"`
}

func toSubmissionResponse(out submission.Outcome) submissionResponse {
	resp := submissionResponse{
		State:       out.State,
		Path:        out.Path,
		Language:    out.Language,
		Translated:  out.Translated,
		Notices:     out.Notices,
		Transitions: out.Transitions,
	}
	if resp.Notices == nil {
		resp.Notices = []submission.Notice{}
	}
	if out.Result != nil {
		resp.Result = &adviceResponse{
			Diagnosis:            out.Result.Diagnosis,
			FirstAidInstructions: out.Result.FirstAidInstructions,
			Severity:             string(out.Result.Severity),
			SeverityLabel:        out.Result.Severity.Label(),
		}
	}
	if out.Failure != nil {
		resp.Error = &errorBody{Kind: out.Failure.Kind, Message: out.Failure.Message}
	}
	return resp
}

type alertRequest struct {
	Location *domain.Location `json:"location,omitempty"`
}

type alertResponse struct {
	Location       domain.Location  `json:"location"`
	MapsURL        string           `json:"mapsUrl"`
	MedicalSummary string           `json:"medicalSummary"`
	Contacts       []domain.Contact `json:"contacts"`
}

func toAlertResponse(a domain.Alert) alertResponse {
	return alertResponse{
		Location:       a.Location,
		MapsURL:        alertadapter.MapsURL(a.Location),
		MedicalSummary: a.MedicalSummary,
		Contacts:       a.Contacts,
	}
}

type errorBody struct {
	Kind    domain.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}
