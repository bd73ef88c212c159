package llm

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/PabloGalante/lifeline-agent/internal/domain"
)

const baseSystemPrompt = `
You are "Lifeline", an AI-powered first aid assistant.

Your role:
- Give immediate, practical first aid instructions a bystander can follow right now.
- Keep steps short, numbered and in plain language.
- Always tell the user to call local emergency services when the situation may be life-threatening.
- You are NOT a replacement for a doctor. Never recommend prescription drugs or doses.

Answer ONLY with the JSON object described by the response schema.
`

const quickInstructions = `
Mode: quick

A user has described the following emergency. Provide clear and concise first aid
instructions. Focus on what the user can do immediately to help the situation.
Do not attempt a diagnosis.
`

const detailedInstructions = `
Mode: detailed

A user has described the following emergency. Provide:
- diagnosis: the most likely injury or condition, in one short sentence.
- firstAidInstructions: clear, concise first aid steps.
- severity: exactly one of Minor, Moderate, Severe, Critical.
`

const imageInstructions = `
Mode: image

You are diagnosing an injury from a photo and an optional description. Provide:
- diagnosis: what the photo most likely shows, in one short sentence.
- firstAidInstructions: clear, concise first aid steps.
- severity: exactly one of Minor, Moderate, Severe, Critical.
`

const translateSystemPrompt = `
You translate first aid instructions. Keep numbering, line breaks and meaning exactly.
Do not add or remove steps. Answer ONLY with the JSON object described by the response schema.
`

// ImageContextFallback is sent when the user attached a photo without a description.
const ImageContextFallback = "Analyze the injury in the image"

// Prompt represents the system prompt + the content to send as "user".
type Prompt struct {
	System string
	Parts  []*genai.Part
	Schema *genai.Schema
}

func stringProp(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

var quickSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"firstAidInstructions": stringProp("Immediate first aid instructions for the described emergency."),
	},
	Required: []string{"firstAidInstructions"},
}

var diagnosisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"diagnosis":            stringProp("The diagnosis of the injury."),
		"firstAidInstructions": stringProp("First aid instructions for the injury."),
		"severity":             stringProp("One of Minor, Moderate, Severe, Critical."),
	},
	Required: []string{"firstAidInstructions"},
}

var translateSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"translatedText": stringProp("The translated text."),
	},
	Required: []string{"translatedText"},
}

// BuildTextPrompt builds the prompt for a text or voice description.
func BuildTextPrompt(description string, mode domain.TextMode) Prompt {
	if mode == domain.TextModeDetailed {
		return Prompt{
			System: baseSystemPrompt + detailedInstructions,
			Parts:  []*genai.Part{genai.NewPartFromText("Emergency description:\n" + description)},
			Schema: diagnosisSchema,
		}
	}
	return Prompt{
		System: baseSystemPrompt + quickInstructions,
		Parts:  []*genai.Part{genai.NewPartFromText("Emergency description:\n" + description)},
		Schema: quickSchema,
	}
}

// BuildImagePrompt attaches the photo inline after the description.
func BuildImagePrompt(description string, image domain.ImageData) Prompt {
	if strings.TrimSpace(description) == "" {
		description = ImageContextFallback
	}
	return Prompt{
		System: baseSystemPrompt + imageInstructions,
		Parts: []*genai.Part{
			genai.NewPartFromText("Description: " + description),
			genai.NewPartFromBytes(image.Data, image.MIMEType),
		},
		Schema: diagnosisSchema,
	}
}

// BuildTranslatePrompt asks for text in the language named by code.
func BuildTranslatePrompt(text, code string) Prompt {
	language := code
	if name, ok := domain.LanguageName(code); ok {
		language = name
	}
	return Prompt{
		System: translateSystemPrompt,
		Parts:  []*genai.Part{genai.NewPartFromText(fmt.Sprintf("Translate the following text into %s:\n\n%s", language, text))},
		Schema: translateSchema,
	}
}
