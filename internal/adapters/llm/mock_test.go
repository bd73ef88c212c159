package llm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/lifeline-agent/internal/adapters/llm"
	"github.com/PabloGalante/lifeline-agent/internal/domain"
)

func TestMockGatewayQuickHasNoSeverity(t *testing.T) {
	g := llm.NewMockGateway()

	res, err := g.DiagnoseFromText(context.Background(), "my hand is bleeding", domain.TextModeQuick)
	require.NoError(t, err)
	assert.NotEmpty(t, res.FirstAidInstructions)
	assert.Equal(t, domain.SeverityUnknown, res.Severity)

	res, err = g.DiagnoseFromText(context.Background(), "he collapsed", domain.TextModeDetailed)
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityCritical, res.Severity)
}
