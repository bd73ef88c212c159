package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

type Severity string

const (
	SeverityMinor    Severity = "Minor"
	SeverityModerate Severity = "Moderate"
	SeveritySevere   Severity = "Severe"
	SeverityCritical Severity = "Critical"
	SeverityUnknown  Severity = "Unknown"
)

const (
	FallbackDiagnosis     = "Diagnosis undetermined"
	FallbackSeverityLabel = "Severity unknown"
)

// Label is the display text of a severity.
func (s Severity) Label() string {
	if s == "" || s == SeverityUnknown {
		return FallbackSeverityLabel
	}
	return string(s)
}

// ParseSeverity maps the model's free-text rating onto the severity scale.
// Critical wins over severe, which wins over moderate, then minor/low.
func ParseSeverity(raw string) Severity {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "critical"):
		return SeverityCritical
	case strings.Contains(s, "severe"):
		return SeveritySevere
	case strings.Contains(s, "moderate"):
		return SeverityModerate
	case strings.Contains(s, "minor"), strings.Contains(s, "low"):
		return SeverityMinor
	default:
		return SeverityUnknown
	}
}

// AdviceResult is the structured first-aid answer shown to the user.
type AdviceResult struct {
	Diagnosis            string   `json:"diagnosis"`
	FirstAidInstructions string   `json:"firstAidInstructions"`
	Severity             Severity `json:"severity"`
}

// NewAdviceResult builds a result from raw remote fields, substituting the
// fallback diagnosis and severity. Missing instructions are an InvalidResponse.
func NewAdviceResult(op, diagnosis, instructions, severity string) (AdviceResult, error) {
	instructions = strings.TrimSpace(instructions)
	if instructions == "" {
		return AdviceResult{}, Ef(KindInvalidResponse, op, "response has no firstAidInstructions")
	}

	diagnosis = strings.TrimSpace(diagnosis)
	if diagnosis == "" {
		diagnosis = FallbackDiagnosis
	}

	return AdviceResult{
		Diagnosis:            diagnosis,
		FirstAidInstructions: instructions,
		Severity:             ParseSeverity(severity),
	}, nil
}

// TextMode selects the remote path used for a text diagnosis.
type TextMode string

const (
	// TextModeQuick asks only for first-aid instructions on the cheaper path.
	TextModeQuick TextMode = "quick"
	// TextModeDetailed asks for diagnosis, instructions and severity.
	TextModeDetailed TextMode = "detailed"
)

// ─────────────────────────────────────────
// Images
// ─────────────────────────────────────────

const MaxImageBytes = 5 * 1024 * 1024

var acceptedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// ImageData is a decoded photo with its MIME type.
type ImageData struct {
	MIMEType string
	Data     []byte
}

// DataURI encodes the image as data:<mime>;base64,<data>.
func (i ImageData) DataURI() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Validate checks size and type limits.
func (i ImageData) Validate() error {
	if len(i.Data) == 0 {
		return Ef(KindValidation, "image", "image is empty")
	}
	if len(i.Data) > MaxImageBytes {
		return Ef(KindValidation, "image", "max image size is 5MB")
	}
	if !acceptedImageTypes[strings.ToLower(i.MIMEType)] {
		return Ef(KindValidation, "image", "only .jpg, .jpeg, .png and .webp formats are supported")
	}
	return nil
}

// ParseDataURI decodes a base64 data URI.
func ParseDataURI(uri string) (ImageData, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return ImageData{}, Ef(KindValidation, "parse data uri", "missing data: prefix")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return ImageData{}, Ef(KindValidation, "parse data uri", "missing payload")
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok || mime == "" {
		return ImageData{}, Ef(KindValidation, "parse data uri", "expected data:<mimetype>;base64,<data>")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return ImageData{}, E(KindValidation, "parse data uri", fmt.Errorf("decode base64: %w", err))
	}
	return ImageData{MIMEType: mime, Data: data}, nil
}

// ─────────────────────────────────────────
// Submission requests
// ─────────────────────────────────────────

const DefaultLanguage = "en"

var supportedLanguages = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"hi": "Hindi",
}

// LanguageName returns the English name of a supported language code.
func LanguageName(code string) (string, bool) {
	name, ok := supportedLanguages[code]
	return name, ok
}

// SubmissionInput is one of TextInput, VoiceInput or ImageInput.
type SubmissionInput interface {
	inputKind() InputKind
}

type InputKind string

const (
	InputText  InputKind = "text"
	InputVoice InputKind = "voice"
	InputImage InputKind = "image"
)

type TextInput struct {
	Description string
}

type VoiceInput struct {
	Transcript string
}

type ImageInput struct {
	Description string
	Image       ImageData
}

func (TextInput) inputKind() InputKind  { return InputText }
func (VoiceInput) inputKind() InputKind { return InputVoice }
func (ImageInput) inputKind() InputKind { return InputImage }

// KindOfInput reports the kind tag of an input; nil yields "".
func KindOfInput(in SubmissionInput) InputKind {
	if in == nil {
		return ""
	}
	return in.inputKind()
}

// SubmissionRequest is one emergency report. It is never persisted.
type SubmissionRequest struct {
	Input          SubmissionInput
	TargetLanguage string
}

// Language returns the target language, defaulting to English.
func (r SubmissionRequest) Language() string {
	lang := strings.ToLower(strings.TrimSpace(r.TargetLanguage))
	if lang == "" {
		return DefaultLanguage
	}
	return lang
}
