// Package flows talks to a Genkit-style flow server: every flow is exposed as
// POST /<flowName> taking {"data": input} and answering {"result": output}.
package flows

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/PabloGalante/lifeline-agent/internal/domain"
	"github.com/PabloGalante/lifeline-agent/internal/observability"
)

const (
	FlowQuickAdvice = "emergencyResponseOfflineFlow"
	FlowDiagnosis   = "imageAidedDiagnosisFlow"
	FlowTranslate   = "localizeEmergencyAdviceFlow"
)

const imageContextFallback = "Analyze the injury in the image"

type flowRequest struct {
	Data any `json:"data"`
}

type flowError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type flowResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *flowError      `json:"error,omitempty"`
}

type quickInput struct {
	EmergencyDescription string `json:"emergencyDescription"`
}

type diagnosisInput struct {
	ImageDataURI string `json:"imageDataUri"`
	Description  string `json:"description"`
}

// The localize flow translates the user's input and the advice in one call;
// only the advice half is used here.
type translateInput struct {
	UserInput string `json:"userInput"`
	Advice    string `json:"advice"`
	Language  string `json:"language"`
}

type adviceOutput struct {
	Diagnosis            string `json:"diagnosis"`
	FirstAidInstructions string `json:"firstAidInstructions"`
	Severity             string `json:"severity"`
}

type translateOutput struct {
	TranslatedInput  string `json:"translatedInput"`
	TranslatedAdvice string `json:"translatedAdvice"`
}

// Gateway implements domain.AdviceGateway against the flow server.
type Gateway struct {
	httpClient *resty.Client
}

// NewGateway creates a client for baseURL. Retries are disabled: fallback
// ordering is decided by the submission pipeline, not the transport.
func NewGateway(baseURL string, timeout time.Duration) *Gateway {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Gateway{httpClient: client}
}

func (g *Gateway) DiagnoseFromText(ctx context.Context, description string, mode domain.TextMode) (domain.AdviceResult, error) {
	var out adviceOutput

	if mode == domain.TextModeDetailed {
		// The diagnosis flow doubles as the detailed text path when no image is sent.
		op := "flows diagnose text detailed"
		if err := g.run(ctx, op, FlowDiagnosis, diagnosisInput{Description: description}, &out); err != nil {
			return domain.AdviceResult{}, err
		}
		return domain.NewAdviceResult(op, out.Diagnosis, out.FirstAidInstructions, out.Severity)
	}

	op := "flows diagnose text quick"
	if err := g.run(ctx, op, FlowQuickAdvice, quickInput{EmergencyDescription: description}, &out); err != nil {
		return domain.AdviceResult{}, err
	}
	// The quick flow does not rate severity; drop whatever it returned.
	return domain.NewAdviceResult(op, out.Diagnosis, out.FirstAidInstructions, "")
}

func (g *Gateway) DiagnoseFromImage(ctx context.Context, description string, image domain.ImageData) (domain.AdviceResult, error) {
	const op = "flows diagnose image"

	if strings.TrimSpace(description) == "" {
		description = imageContextFallback
	}

	var out adviceOutput
	in := diagnosisInput{ImageDataURI: image.DataURI(), Description: description}
	if err := g.run(ctx, op, FlowDiagnosis, in, &out); err != nil {
		return domain.AdviceResult{}, err
	}
	return domain.NewAdviceResult(op, out.Diagnosis, out.FirstAidInstructions, out.Severity)
}

func (g *Gateway) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	const op = "flows translate"

	var out translateOutput
	if err := g.run(ctx, op, FlowTranslate, translateInput{UserInput: text, Advice: text, Language: targetLanguage}, &out); err != nil {
		return "", domain.E(domain.KindTranslationFailed, op, err)
	}
	translated := strings.TrimSpace(out.TranslatedAdvice)
	if translated == "" {
		return "", domain.Ef(domain.KindTranslationFailed, op, "empty translation")
	}
	return translated, nil
}

// run posts one flow invocation and decodes its result into out.
func (g *Gateway) run(ctx context.Context, op, flow string, in, out any) error {
	log := observability.LoggerFromContext(ctx).With("op", op, "flow", flow)
	start := time.Now()

	var body flowResponse
	resp, err := g.httpClient.R().
		SetContext(ctx).
		SetBody(flowRequest{Data: in}).
		SetResult(&body).
		SetError(&body).
		Post("/" + flow)
	if err != nil {
		log.Error("flow call failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return domain.RemoteError(op, err)
	}

	if resp.IsError() {
		msg := resp.Status()
		if body.Error != nil && body.Error.Message != "" {
			msg = body.Error.Message
		}
		log.Error("flow returned error", "status_code", resp.StatusCode(), "flow_error", msg)
		if resp.StatusCode() == 504 || resp.StatusCode() == 408 {
			return domain.Ef(domain.KindTimeout, op, "flow %s: %s", flow, msg)
		}
		return domain.Ef(domain.KindServiceUnavailable, op, "flow %s: %s", flow, msg)
	}

	if len(body.Result) == 0 || string(body.Result) == "null" {
		log.Warn("flow returned no result", "status_code", resp.StatusCode())
		return domain.Ef(domain.KindInvalidResponse, op, "flow %s returned no result", flow)
	}
	if err := json.Unmarshal(body.Result, out); err != nil {
		log.Warn("flow result does not match schema", "error", err)
		return domain.E(domain.KindInvalidResponse, op, fmt.Errorf("decode %s result: %w", flow, err))
	}

	log.Info("flow call done", "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}
