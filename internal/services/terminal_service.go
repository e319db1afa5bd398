package services

import (
	"context"
	"fmt"
	"strings"

	"codeloom/internal/llm/client"
	"codeloom/internal/llm/prompt"
	"codeloom/internal/models"
)

// TerminalService simulates shell commands against the workspace. No
// process ever runs; the model predicts plausible output from the file
// tree, which is enough for an in-browser preview terminal.
type TerminalService struct {
	newGateway GatewayFactory
	provider   string
}

func NewTerminalService(factory GatewayFactory) *TerminalService {
	return &TerminalService{newGateway: factory, provider: "gemini"}
}

// SetProvider switches the backing provider for command simulation.
func (s *TerminalService) SetProvider(providerID string) {
	if providerID != "" {
		s.provider = providerID
	}
}

// Execute returns the simulated stdout/stderr for one command. The fast
// tier is always used; command simulation never needs deep reasoning.
func (s *TerminalService) Execute(ctx context.Context, command string, files []models.FileRecord) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "", fmt.Errorf("command is required")
	}

	system, err := prompt.TerminalInstruction()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("WORKSPACE FILES:\n")
	if len(files) == 0 {
		b.WriteString("(empty)\n")
	}
	for _, f := range files {
		b.WriteString(fmt.Sprintf("=== %s ===\n%s\n", f.Path, f.Content))
	}
	b.WriteString("\nCOMMAND:\n")
	b.WriteString(command)

	cfg := client.ConfigForTier(models.TierFast)
	gateway, err := s.newGateway(ctx, s.provider, models.TierFast, cfg)
	if err != nil {
		return "", err
	}
	out, err := gateway.Generate(ctx, system, []prompt.Part{{Text: b.String()}}, cfg)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
