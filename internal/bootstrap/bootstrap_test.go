package bootstrap_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/lifeline-agent/internal/app/alert"
	"github.com/PabloGalante/lifeline-agent/internal/bootstrap"
	"github.com/PabloGalante/lifeline-agent/internal/config"
	"github.com/PabloGalante/lifeline-agent/internal/domain"
	"github.com/PabloGalante/lifeline-agent/internal/observability"
)

func localConfig() *config.Config {
	return &config.Config{
		Mode:           config.ModeLocal,
		AdviceBackend:  "mock",
		AdviceTimeout:  time.Second,
		StorageBackend: "memory",
		ProfileKey:     "user",
		AlertBackend:   "log",
	}
}

func TestLocalAppEndToEnd(t *testing.T) {
	observability.Discard()
	ctx := context.Background()

	app, err := bootstrap.New(ctx, localConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	_, err = app.Profiles.SignIn(ctx, "ana@example.com")
	require.NoError(t, err)
	_, err = app.Profiles.AddContact(ctx, domain.ContactInput{Name: "Luis", PhoneNumber: "+34600333444"})
	require.NoError(t, err)

	out := app.Pipeline.Submit(ctx, domain.SubmissionRequest{
		Input:          domain.TextInput{Description: "I burned my hand"},
		TargetLanguage: "es",
	})
	require.True(t, out.Done())
	assert.True(t, out.Translated)

	// No default location configured and none sent by the caller.
	_, err = app.Alerts.Trigger(ctx, alert.Request{})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestUnreachableRedisFails(t *testing.T) {
	observability.Discard()
	cfg := localConfig()
	cfg.StorageBackend = "redis"
	cfg.RedisAddr = "127.0.0.1:1"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := bootstrap.New(ctx, cfg)
	assert.Error(t, err)
}
