package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("Agents:\n{{.AgentCards}}", map[string]any{"AgentCards": "card-a\ncard-b"})
	require.NoError(t, err)
	assert.Equal(t, "Agents:\ncard-a\ncard-b", out)
}

func TestRenderTemplate_NoMarkersFastPath(t *testing.T) {
	out, err := RenderTemplate("plain prompt without substitution", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain prompt without substitution", out)
}

func TestRenderTemplate_MissingKeyRendersZero(t *testing.T) {
	out, err := RenderTemplate("value: {{.Missing}}", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "value: <no value>", out)
}

func TestRenderTemplate_InvalidTemplate(t *testing.T) {
	_, err := RenderTemplate("{{.Broken", nil)
	assert.Error(t, err)
}
