package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/PabloGalante/lifeline-agent/internal/domain"
	"github.com/PabloGalante/lifeline-agent/internal/observability"
)

// generator is the slice of the genai client the gateway needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type VertexOptions struct {
	ProjectID string
	Location  string
	// APIKey switches to the Gemini Developer API instead of Vertex AI.
	APIKey string

	// ModelName serves detailed text, image and translation calls;
	// QuickModelName serves the cheaper quick text path.
	ModelName      string
	QuickModelName string

	// Timeout bounds each remote call. Zero means no gateway-side limit.
	Timeout time.Duration
}

// VertexGateway implements domain.AdviceGateway on top of Gemini.
type VertexGateway struct {
	models generator
	opts   VertexOptions
}

// NewVertexGateway creates an AdviceGateway based on Vertex AI (Gemini).
func NewVertexGateway(ctx context.Context, opts VertexOptions) (*VertexGateway, error) {
	cc := &genai.ClientConfig{}
	if opts.APIKey != "" {
		cc.APIKey = opts.APIKey
		cc.Backend = genai.BackendGeminiAPI
	} else {
		if opts.ProjectID == "" || opts.Location == "" {
			return nil, fmt.Errorf("GCP project and location must be set for Vertex AI")
		}
		cc.Project = opts.ProjectID
		cc.Location = opts.Location
		cc.Backend = genai.BackendVertexAI
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return newVertexGateway(client.Models, opts), nil
}

func newVertexGateway(models generator, opts VertexOptions) *VertexGateway {
	if opts.ModelName == "" {
		opts.ModelName = "gemini-2.5-flash"
	}
	if opts.QuickModelName == "" {
		opts.QuickModelName = "gemini-2.5-flash-lite"
	}
	return &VertexGateway{models: models, opts: opts}
}

type adviceJSON struct {
	Diagnosis            string `json:"diagnosis"`
	FirstAidInstructions string `json:"firstAidInstructions"`
	Severity             string `json:"severity"`
}

type translationJSON struct {
	TranslatedText string `json:"translatedText"`
}

// DiagnoseFromText implements domain.AdviceGateway.
func (v *VertexGateway) DiagnoseFromText(ctx context.Context, description string, mode domain.TextMode) (domain.AdviceResult, error) {
	op := "vertex diagnose text " + string(mode)
	model := v.opts.ModelName
	if mode != domain.TextModeDetailed {
		model = v.opts.QuickModelName
	}

	var out adviceJSON
	if err := v.call(ctx, op, model, BuildTextPrompt(description, mode), &out); err != nil {
		return domain.AdviceResult{}, err
	}
	return domain.NewAdviceResult(op, out.Diagnosis, out.FirstAidInstructions, out.Severity)
}

// DiagnoseFromImage implements domain.AdviceGateway.
func (v *VertexGateway) DiagnoseFromImage(ctx context.Context, description string, image domain.ImageData) (domain.AdviceResult, error) {
	const op = "vertex diagnose image"

	var out adviceJSON
	if err := v.call(ctx, op, v.opts.ModelName, BuildImagePrompt(description, image), &out); err != nil {
		return domain.AdviceResult{}, err
	}
	return domain.NewAdviceResult(op, out.Diagnosis, out.FirstAidInstructions, out.Severity)
}

// Translate implements domain.AdviceGateway. Every failure is TranslationFailed.
func (v *VertexGateway) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	const op = "vertex translate"

	var out translationJSON
	if err := v.call(ctx, op, v.opts.ModelName, BuildTranslatePrompt(text, targetLanguage), &out); err != nil {
		return "", domain.E(domain.KindTranslationFailed, op, err)
	}
	translated := strings.TrimSpace(out.TranslatedText)
	if translated == "" {
		return "", domain.Ef(domain.KindTranslationFailed, op, "empty translation")
	}
	return translated, nil
}

// call sends one prompt and decodes the JSON answer into out.
func (v *VertexGateway) call(ctx context.Context, op, model string, p Prompt, out any) error {
	if v.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.opts.Timeout)
		defer cancel()
	}

	log := observability.LoggerFromContext(ctx).With("op", op, "model", model)

	temp := float32(0.2)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(p.System, genai.RoleUser),
		Temperature:       &temp,
		MaxOutputTokens:   2048,
		ResponseMIMEType:  "application/json",
		ResponseSchema:    p.Schema,
	}
	contents := []*genai.Content{genai.NewContentFromParts(p.Parts, genai.RoleUser)}

	start := time.Now()
	res, err := v.models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		log.Error("vertex call failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return domain.RemoteError(op, err)
	}

	text := strings.TrimSpace(res.Text())
	if text == "" {
		return domain.Ef(domain.KindInvalidResponse, op, "vertex returned empty text")
	}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), out); err != nil {
		return domain.E(domain.KindInvalidResponse, op, err)
	}

	log.Info("vertex call done", "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

// stripCodeFence removes a ```json fence some models wrap around JSON output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
