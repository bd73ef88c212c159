package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/PabloGalante/lifeline-agent/internal/domain"
	"github.com/PabloGalante/lifeline-agent/internal/observability"
)

type State string

const (
	StateIdle               State = "idle"
	StateValidating         State = "validating"
	StateSubmittingPrimary  State = "submitting_primary"
	StateSubmittingFallback State = "submitting_fallback"
	StateTranslating        State = "translating"
	StateDone               State = "done"
	StateFailed             State = "failed"
)

// Path records which remote call produced the diagnosis.
type Path string

const (
	PathQuickText    Path = "quick_text"
	PathDetailedText Path = "detailed_text"
	PathImage        Path = "image"
)

type NoticeCode string

const (
	NoticeFallbackUsed      NoticeCode = "fallback_used"
	NoticeTranslationFailed NoticeCode = "translation_failed"
)

// Notice is advisory: the submission still produced a usable result.
type Notice struct {
	Code    NoticeCode `json:"code"`
	Message string     `json:"message"`
}

// Failure is the user-facing side of a terminal error.
type Failure struct {
	Kind    domain.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

// Outcome is Done with a Result, or Failed with a Failure.
type Outcome struct {
	State       State
	Result      *domain.AdviceResult
	Path        Path
	Language    string
	Translated  bool
	Notices     []Notice
	Failure     *Failure
	Transitions []State
}

func (o Outcome) Done() bool { return o.State == StateDone }

// Pipeline turns one emergency report into advice. It accepts a single
// submission at a time; a concurrent Submit is rejected with kind busy.
type Pipeline struct {
	gateway  domain.AdviceGateway
	inflight *semaphore.Weighted
	now      func() time.Time
}

func NewPipeline(gateway domain.AdviceGateway) *Pipeline {
	return &Pipeline{
		gateway:  gateway,
		inflight: semaphore.NewWeighted(1),
		now:      time.Now,
	}
}

// run carries the per-submission state.
type run struct {
	out   Outcome
	log   *slog.Logger
	now   func() time.Time
	stage time.Time
}

func (r *run) enter(s State) {
	if len(r.out.Transitions) > 0 {
		prev := r.out.Transitions[len(r.out.Transitions)-1]
		r.log.Info("stage end", "stage", prev, "elapsed_ms", r.now().Sub(r.stage).Milliseconds())
	}
	r.out.State = s
	r.out.Transitions = append(r.out.Transitions, s)
	r.stage = r.now()
	r.log.Info("stage start", "stage", s)
}

func (r *run) fail(err error) Outcome {
	kind := domain.KindOf(err)
	r.log.Error("submission failed", "kind", kind, "error", err)
	r.enter(StateFailed)
	r.out.Result = nil
	r.out.Failure = &Failure{Kind: kind, Message: domain.UserMessage(kind)}
	return r.out
}

// Submit runs the pipeline to completion. It never returns raw errors: a
// terminal problem is reported through Outcome.Failure.
func (p *Pipeline) Submit(ctx context.Context, req domain.SubmissionRequest) Outcome {
	log := observability.LoggerFromContext(ctx).With(
		"input_kind", domain.KindOfInput(req.Input),
		"language", req.Language(),
	)

	if !p.inflight.TryAcquire(1) {
		log.Warn("submission rejected, another one is in flight")
		return Outcome{
			State:   StateFailed,
			Failure: &Failure{Kind: domain.KindBusy, Message: domain.UserMessage(domain.KindBusy)},
		}
	}
	defer p.inflight.Release(1)

	r := &run{log: log, now: p.now}
	r.enter(StateIdle)
	r.out.Language = req.Language()

	r.enter(StateValidating)
	if err := Validate(req); err != nil {
		return r.fail(err)
	}

	var (
		result domain.AdviceResult
		err    error
	)

	switch in := req.Input.(type) {
	case domain.TextInput:
		result, err = p.diagnoseText(ctx, r, in.Description)
	case domain.VoiceInput:
		result, err = p.diagnoseText(ctx, r, in.Transcript)
	case domain.ImageInput:
		result, err = p.diagnoseImage(ctx, r, in)
	default:
		err = domain.Ef(domain.KindValidation, "submit", "unsupported input %T", req.Input)
	}
	if err != nil {
		return r.fail(err)
	}

	if r.out.Language != domain.DefaultLanguage {
		result = p.translate(ctx, r, result)
	}

	r.out.Result = &result
	r.enter(StateDone)
	log.Info("submission done",
		"path", r.out.Path,
		"severity", result.Severity,
		"translated", r.out.Translated,
		"notices", len(r.out.Notices),
	)
	return r.out
}

// diagnoseText tries the quick path first and falls back to the detailed
// path exactly once on any gateway error.
func (p *Pipeline) diagnoseText(ctx context.Context, r *run, description string) (domain.AdviceResult, error) {
	r.enter(StateSubmittingPrimary)
	res, err := p.gateway.DiagnoseFromText(ctx, description, domain.TextModeQuick)
	if err == nil {
		r.out.Path = PathQuickText
		return res, nil
	}
	logGatewayError(r.log, "primary advice call failed", err)

	r.enter(StateSubmittingFallback)
	r.out.Notices = append(r.out.Notices, Notice{
		Code:    NoticeFallbackUsed,
		Message: "Quick assistance failed. Trying online assistance...",
	})
	res, ferr := p.gateway.DiagnoseFromText(ctx, description, domain.TextModeDetailed)
	if ferr != nil {
		logGatewayError(r.log, "fallback advice call failed", ferr)
		return domain.AdviceResult{}, fmt.Errorf("primary: %v; fallback: %w", err, ferr)
	}
	r.out.Path = PathDetailedText
	return res, nil
}

// diagnoseImage has no fallback: a failure here is terminal.
func (p *Pipeline) diagnoseImage(ctx context.Context, r *run, in domain.ImageInput) (domain.AdviceResult, error) {
	r.enter(StateSubmittingPrimary)
	res, err := p.gateway.DiagnoseFromImage(ctx, in.Description, in.Image)
	if err != nil {
		logGatewayError(r.log, "image advice call failed", err)
		return domain.AdviceResult{}, err
	}
	r.out.Path = PathImage
	return res, nil
}

// translate replaces the instructions only. A failure keeps the English text.
func (p *Pipeline) translate(ctx context.Context, r *run, res domain.AdviceResult) domain.AdviceResult {
	r.enter(StateTranslating)
	translated, err := p.gateway.Translate(ctx, res.FirstAidInstructions, r.out.Language)
	if err != nil {
		r.log.Warn("translation failed, keeping English advice", "error", err)
		r.out.Notices = append(r.out.Notices, Notice{
			Code:    NoticeTranslationFailed,
			Message: domain.UserMessage(domain.KindTranslationFailed),
		})
		return res
	}
	res.FirstAidInstructions = translated
	r.out.Translated = true
	return res
}

func logGatewayError(log *slog.Logger, msg string, err error) {
	if errors.Is(err, domain.ErrInvalidResponse) {
		log.Warn(msg, "kind", domain.KindInvalidResponse, "malformed_payload", true, "error", err)
		return
	}
	log.Warn(msg, "kind", domain.KindOf(err), "error", err)
}
