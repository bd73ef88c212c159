package submission_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/PabloGalante/lifeline-agent/internal/app/submission"
	"github.com/PabloGalante/lifeline-agent/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeGateway struct {
	mu sync.Mutex

	quickErr     error
	detailedErr  error
	imageErr     error
	translateErr error

	// block, when set, holds every diagnosis call until it is closed.
	block   chan struct{}
	entered chan struct{}

	quickCalls     int
	detailedCalls  int
	imageCalls     int
	translateCalls int
	gotImageDesc   string
	gotLanguage    string
}

func (f *fakeGateway) wait() {
	if f.block == nil {
		return
	}
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	<-f.block
}

func (f *fakeGateway) DiagnoseFromText(_ context.Context, description string, mode domain.TextMode) (domain.AdviceResult, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()

	if mode == domain.TextModeQuick {
		f.quickCalls++
		if f.quickErr != nil {
			return domain.AdviceResult{}, f.quickErr
		}
		return domain.AdviceResult{
			Diagnosis:            domain.FallbackDiagnosis,
			FirstAidInstructions: "Apply firm pressure.",
			Severity:             domain.SeverityUnknown,
		}, nil
	}

	f.detailedCalls++
	if f.detailedErr != nil {
		return domain.AdviceResult{}, f.detailedErr
	}
	return domain.AdviceResult{
		Diagnosis:            "Laceration",
		FirstAidInstructions: "Apply firm pressure and elevate.",
		Severity:             domain.SeverityModerate,
	}, nil
}

func (f *fakeGateway) DiagnoseFromImage(_ context.Context, description string, _ domain.ImageData) (domain.AdviceResult, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()

	f.imageCalls++
	f.gotImageDesc = description
	if f.imageErr != nil {
		return domain.AdviceResult{}, f.imageErr
	}
	return domain.AdviceResult{
		Diagnosis:            "Second-degree burn",
		FirstAidInstructions: "Cool under running water.",
		Severity:             domain.SeveritySevere,
	}, nil
}

func (f *fakeGateway) Translate(_ context.Context, text, lang string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.translateCalls++
	f.gotLanguage = lang
	if f.translateErr != nil {
		return "", f.translateErr
	}
	return "[" + lang + "] " + text, nil
}

func (f *fakeGateway) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quickCalls + f.detailedCalls + f.imageCalls + f.translateCalls
}

func textRequest(desc, lang string) domain.SubmissionRequest {
	return domain.SubmissionRequest{Input: domain.TextInput{Description: desc}, TargetLanguage: lang}
}

var photo = domain.ImageData{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}}

func TestPrimarySuccessSkipsFallback(t *testing.T) {
	gw := &fakeGateway{}
	out := submission.NewPipeline(gw).Submit(context.Background(), textRequest("deep cut on my arm", ""))

	require.True(t, out.Done())
	assert.Equal(t, submission.PathQuickText, out.Path)
	assert.Equal(t, 1, gw.quickCalls)
	assert.Equal(t, 0, gw.detailedCalls)
	assert.Equal(t, 0, gw.translateCalls)
	assert.Empty(t, out.Notices)
	assert.Nil(t, out.Failure)
	assert.Equal(t, "Apply firm pressure.", out.Result.FirstAidInstructions)
	assert.Equal(t, []submission.State{
		submission.StateIdle,
		submission.StateValidating,
		submission.StateSubmittingPrimary,
		submission.StateDone,
	}, out.Transitions)
}

func TestFallbackRunsExactlyOnce(t *testing.T) {
	gw := &fakeGateway{quickErr: domain.Ef(domain.KindServiceUnavailable, "quick", "down")}
	out := submission.NewPipeline(gw).Submit(context.Background(), textRequest("deep cut", "en"))

	require.True(t, out.Done())
	assert.Equal(t, submission.PathDetailedText, out.Path)
	assert.Equal(t, 1, gw.quickCalls)
	assert.Equal(t, 1, gw.detailedCalls)
	assert.Equal(t, domain.SeverityModerate, out.Result.Severity)
	require.Len(t, out.Notices, 1)
	assert.Equal(t, submission.NoticeFallbackUsed, out.Notices[0].Code)
	assert.Contains(t, out.Transitions, submission.StateSubmittingFallback)
	assert.Equal(t, 0, gw.translateCalls)
}

func TestEnglishIsNeverTranslated(t *testing.T) {
	cases := map[string]*fakeGateway{
		"both paths fail": {
			quickErr:    domain.Ef(domain.KindServiceUnavailable, "quick", "down"),
			detailedErr: domain.Ef(domain.KindServiceUnavailable, "detailed", "down"),
		},
		"image fails": {imageErr: domain.Ef(domain.KindTimeout, "image", "slow")},
	}

	for name, gw := range cases {
		t.Run(name, func(t *testing.T) {
			req := textRequest("burn", "en")
			if gw.imageErr != nil {
				req.Input = domain.ImageInput{Image: photo}
			}
			out := submission.NewPipeline(gw).Submit(context.Background(), req)

			assert.Equal(t, submission.StateFailed, out.State)
			assert.Equal(t, 0, gw.translateCalls)
			assert.NotContains(t, out.Transitions, submission.StateTranslating)
		})
	}
}

func TestFallbackOnMalformedPrimary(t *testing.T) {
	gw := &fakeGateway{quickErr: domain.Ef(domain.KindInvalidResponse, "quick", "not json")}
	out := submission.NewPipeline(gw).Submit(context.Background(), textRequest("burn", ""))

	require.True(t, out.Done())
	assert.Equal(t, 1, gw.detailedCalls)
}

func TestBothPathsFail(t *testing.T) {
	gw := &fakeGateway{
		quickErr:    domain.Ef(domain.KindServiceUnavailable, "quick", "down"),
		detailedErr: domain.Ef(domain.KindTimeout, "detailed", "slow"),
	}
	out := submission.NewPipeline(gw).Submit(context.Background(), textRequest("burn", "es"))

	assert.Equal(t, submission.StateFailed, out.State)
	assert.Nil(t, out.Result)
	require.NotNil(t, out.Failure)
	assert.Equal(t, domain.KindTimeout, out.Failure.Kind)
	assert.Equal(t, domain.UserMessage(domain.KindTimeout), out.Failure.Message)
	assert.Equal(t, 1, gw.quickCalls)
	assert.Equal(t, 1, gw.detailedCalls)
	assert.Equal(t, 0, gw.translateCalls)
}

func TestVoiceUsesTextPaths(t *testing.T) {
	gw := &fakeGateway{}
	req := domain.SubmissionRequest{Input: domain.VoiceInput{Transcript: "my friend fainted"}}
	out := submission.NewPipeline(gw).Submit(context.Background(), req)

	require.True(t, out.Done())
	assert.Equal(t, 1, gw.quickCalls)
}

func TestImageHasNoFallback(t *testing.T) {
	gw := &fakeGateway{imageErr: domain.Ef(domain.KindServiceUnavailable, "image", "down")}
	req := domain.SubmissionRequest{Input: domain.ImageInput{Image: photo}}
	out := submission.NewPipeline(gw).Submit(context.Background(), req)

	assert.Equal(t, submission.StateFailed, out.State)
	assert.Equal(t, domain.KindServiceUnavailable, out.Failure.Kind)
	assert.Equal(t, 1, gw.imageCalls)
	assert.Equal(t, 0, gw.quickCalls+gw.detailedCalls)
	assert.NotContains(t, out.Transitions, submission.StateSubmittingFallback)
}

func TestImageSuccess(t *testing.T) {
	gw := &fakeGateway{}
	req := domain.SubmissionRequest{Input: domain.ImageInput{Description: "hand burn", Image: photo}}
	out := submission.NewPipeline(gw).Submit(context.Background(), req)

	require.True(t, out.Done())
	assert.Equal(t, submission.PathImage, out.Path)
	assert.Equal(t, "hand burn", gw.gotImageDesc)
	assert.Equal(t, domain.SeveritySevere, out.Result.Severity)
}

func TestTranslationReplacesInstructionsOnly(t *testing.T) {
	gw := &fakeGateway{}
	out := submission.NewPipeline(gw).Submit(context.Background(), textRequest("cut", "ES"))

	require.True(t, out.Done())
	assert.True(t, out.Translated)
	assert.Equal(t, "es", gw.gotLanguage)
	assert.Equal(t, "[es] Apply firm pressure.", out.Result.FirstAidInstructions)
	assert.Equal(t, domain.FallbackDiagnosis, out.Result.Diagnosis)
	assert.Contains(t, out.Transitions, submission.StateTranslating)
}

func TestTranslationFailureKeepsEnglish(t *testing.T) {
	gw := &fakeGateway{translateErr: domain.Ef(domain.KindTranslationFailed, "translate", "boom")}
	out := submission.NewPipeline(gw).Submit(context.Background(), textRequest("cut", "hi"))

	require.True(t, out.Done())
	assert.False(t, out.Translated)
	assert.Equal(t, "Apply firm pressure.", out.Result.FirstAidInstructions)
	require.Len(t, out.Notices, 1)
	assert.Equal(t, submission.NoticeTranslationFailed, out.Notices[0].Code)
	assert.Nil(t, out.Failure)
}

func TestValidationFailsBeforeAnyCall(t *testing.T) {
	big := domain.ImageData{MIMEType: "image/png", Data: make([]byte, domain.MaxImageBytes+1)}
	cases := map[string]domain.SubmissionRequest{
		"empty text":       textRequest("   ", ""),
		"empty voice":      {Input: domain.VoiceInput{}},
		"no input":         {},
		"bad language":     textRequest("cut", "pt"),
		"image too large":  {Input: domain.ImageInput{Image: big}},
		"image wrong type": {Input: domain.ImageInput{Image: domain.ImageData{MIMEType: "image/gif", Data: []byte("GIF89a")}}},
		"image missing":    {Input: domain.ImageInput{Description: "burn"}},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			gw := &fakeGateway{}
			out := submission.NewPipeline(gw).Submit(context.Background(), req)

			assert.Equal(t, submission.StateFailed, out.State)
			require.NotNil(t, out.Failure)
			assert.Equal(t, domain.KindValidation, out.Failure.Kind)
			assert.Zero(t, gw.totalCalls())
		})
	}
}

func TestConcurrentSubmitIsBusy(t *testing.T) {
	gw := &fakeGateway{block: make(chan struct{}), entered: make(chan struct{})}
	p := submission.NewPipeline(gw)

	done := make(chan submission.Outcome)
	go func() {
		done <- p.Submit(context.Background(), textRequest("cut", ""))
	}()
	<-gw.entered

	second := p.Submit(context.Background(), textRequest("burn", ""))
	assert.Equal(t, submission.StateFailed, second.State)
	require.NotNil(t, second.Failure)
	assert.Equal(t, domain.KindBusy, second.Failure.Kind)

	close(gw.block)
	first := <-done
	assert.True(t, first.Done())

	// The slot is free again.
	gw.block = nil
	assert.True(t, p.Submit(context.Background(), textRequest("cut", "")).Done())
}

func TestUnclassifiedErrorIsInternal(t *testing.T) {
	gw := &fakeGateway{
		quickErr:    errors.New("boom"),
		detailedErr: errors.New("boom again"),
	}
	out := submission.NewPipeline(gw).Submit(context.Background(), textRequest("cut", ""))
	assert.Equal(t, domain.KindInternal, out.Failure.Kind)
}
