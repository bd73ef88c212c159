package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/lifeline-agent/internal/domain"
)

// MockGateway gives canned, keyword-based advice for local development.
type MockGateway struct{}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

type cannedAdvice struct {
	keywords     []string
	diagnosis    string
	instructions string
	severity     domain.Severity
}

var canned = []cannedAdvice{
	{
		keywords:     []string{"bleed", "cut", "wound"},
		diagnosis:    "Bleeding wound",
		instructions: "1. Apply firm, direct pressure with a clean cloth.\n2. Keep pressing for at least 10 minutes.\n3. Raise the injured area above the heart if possible.\n4. Call emergency services if bleeding does not stop.",
		severity:     domain.SeverityModerate,
	},
	{
		keywords:     []string{"burn", "scald"},
		diagnosis:    "Thermal burn",
		instructions: "1. Cool the burn under cool running water for 20 minutes.\n2. Remove rings or tight items near the area.\n3. Cover loosely with cling film or a clean dressing.\n4. Do not apply ice, butter or creams.",
		severity:     domain.SeverityModerate,
	},
	{
		keywords:     []string{"breath", "chest", "unconscious", "collapse"},
		diagnosis:    "Possible cardiac or respiratory emergency",
		instructions: "1. Call emergency services now.\n2. Check for breathing.\n3. If not breathing, start CPR: 30 chest compressions then 2 rescue breaths.\n4. Use an AED if one is available.",
		severity:     domain.SeverityCritical,
	},
}

func match(description string) cannedAdvice {
	d := strings.ToLower(description)
	for _, c := range canned {
		for _, k := range c.keywords {
			if strings.Contains(d, k) {
				return c
			}
		}
	}
	return cannedAdvice{
		instructions: "1. Make sure the area is safe.\n2. Keep the person still and comfortable.\n3. Call emergency services if symptoms are serious or getting worse.",
	}
}

func (m *MockGateway) DiagnoseFromText(_ context.Context, description string, mode domain.TextMode) (domain.AdviceResult, error) {
	c := match(description)
	if mode != domain.TextModeDetailed {
		return domain.NewAdviceResult("mock diagnose text", "", c.instructions, "")
	}
	return domain.NewAdviceResult("mock diagnose text", c.diagnosis, c.instructions, string(c.severity))
}

func (m *MockGateway) DiagnoseFromImage(_ context.Context, description string, _ domain.ImageData) (domain.AdviceResult, error) {
	c := match(description)
	return domain.NewAdviceResult("mock diagnose image", c.diagnosis, c.instructions, string(c.severity))
}

func (m *MockGateway) Translate(_ context.Context, text, targetLanguage string) (string, error) {
	return fmt.Sprintf("[%s] %s", targetLanguage, text), nil
}
