package services

import (
	"context"
	"strings"
	"testing"

	"codeloom/internal/llm/client"
	"codeloom/internal/llm/prompt"
	"codeloom/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalExecute_SendsWorkspaceAndCommand(t *testing.T) {
	var seen string
	gw := gatewayFunc(func(ctx context.Context, system string, parts []prompt.Part, cfg client.GenerationConfig) (string, error) {
		seen = parts[0].Text
		return "  total 2\nindex.html\napp.js\n", nil
	})
	svc := NewTerminalService(fixedFactory(gw))

	out, err := svc.Execute(context.Background(), "ls -la", []models.FileRecord{
		{Path: "index.html", Content: "<!doctype html>"},
		{Path: "app.js", Content: "console.log(1)"},
	})
	require.NoError(t, err)
	assert.Equal(t, "total 2\nindex.html\napp.js", out)
	assert.True(t, strings.Contains(seen, "=== index.html ==="))
	assert.True(t, strings.Contains(seen, "COMMAND:\nls -la"))
}

func TestTerminalExecute_EmptyCommandRejected(t *testing.T) {
	svc := NewTerminalService(fixedFactory(gatewayFunc(func(ctx context.Context, system string, parts []prompt.Part, cfg client.GenerationConfig) (string, error) {
		return "", nil
	})))

	_, err := svc.Execute(context.Background(), "   ", nil)
	assert.Error(t, err)
}
