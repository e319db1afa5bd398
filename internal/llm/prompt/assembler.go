// Package prompt assembles the system instruction and user context for a
// generation turn from embedded protocol sections.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"codeloom/internal/models"
)

// fileContentBudget caps how much of each workspace file is serialized
// into the user context.
const fileContentBudget = 12 * 1024

const truncationMarker = "\n... [content truncated]"

// Part is one element of the multimodal payload sent to the gateway.
// Exactly one of Text or InlineData is set.
type Part struct {
	Text string
	// InlineData carries a base64-encoded binary attachment.
	InlineData string
	MimeType   string
}

// Input bundles everything a turn contributes to the prompt.
type Input struct {
	Mode         string
	Platform     string
	Language     string
	ProjectName  string
	UserText     string
	CurrentFiles []models.FileRecord
	History      []models.ChatTurn
	Attachments  []models.Attachment
}

// Build returns the system instruction and the ordered user parts for a
// turn. The output is deterministic for identical inputs: no timestamps,
// ids or randomness are embedded.
func Build(in Input) (string, []Part, error) {
	system, err := SystemInstruction(in.Mode, in.Platform, in.Language)
	if err != nil {
		return "", nil, err
	}

	parts := []Part{{Text: userContext(in)}}
	for _, att := range in.Attachments {
		parts = append(parts, attachmentPart(att))
	}
	return system, parts, nil
}

// SystemInstruction concatenates the fixed protocol sections selected by
// mode, platform and language.
func SystemInstruction(mode, platform, language string) (string, error) {
	sections := []string{"base.txt"}

	switch platform {
	case models.PlatformWeb, models.PlatformMobile, models.PlatformDesktop:
		sections = append(sections, "platform_"+platform+".txt")
	default:
		return "", fmt.Errorf("unknown platform %q", platform)
	}

	switch mode {
	case models.ModeGreenfield:
		sections = append(sections, "mode_greenfield.txt")
	case models.ModeModification:
		sections = append(sections, "mode_modification.txt")
	default:
		return "", fmt.Errorf("unknown mode %q", mode)
	}

	if models.IsSupportedLanguage(language) {
		sections = append(sections, "lang_"+language+".txt")
	} else {
		return "", fmt.Errorf("unsupported language %q", language)
	}

	sections = append(sections, "output_contract.txt")

	var b strings.Builder
	for i, name := range sections {
		body, err := embeddedPrompts.ReadFile("prompts/" + name)
		if err != nil {
			return "", fmt.Errorf("load prompt section %s: %w", name, err)
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.Write(body)
	}
	return b.String(), nil
}

// TerminalInstruction returns the system prompt for the simulated
// terminal.
func TerminalInstruction() (string, error) {
	body, err := embeddedPrompts.ReadFile("prompts/terminal.txt")
	if err != nil {
		return "", fmt.Errorf("load terminal prompt: %w", err)
	}
	return string(body), nil
}

// userContext renders the labeled plain-text context block.
func userContext(in Input) string {
	var b strings.Builder

	b.WriteString("REQUEST:\n")
	b.WriteString(in.UserText)
	b.WriteString("\n\nTARGET PLATFORM: " + in.Platform)
	b.WriteString("\nTARGET LANGUAGE: " + in.Language)
	if in.ProjectName != "" {
		b.WriteString("\nPROJECT NAME: " + in.ProjectName)
	}

	if len(in.CurrentFiles) > 0 {
		b.WriteString("\n\nCURRENT PROJECT FILES (" + fmt.Sprint(len(in.CurrentFiles)) + "):\n")
		for _, f := range in.CurrentFiles {
			b.WriteString("- " + f.Path + "\n")
		}
		b.WriteString("\nFILE CONTENTS:\n")
		for _, f := range in.CurrentFiles {
			b.WriteString("--- " + f.Path + " ---\n")
			b.WriteString(truncate(f.Content))
			b.WriteString("\n")
		}
	}

	if len(in.History) > 0 {
		b.WriteString("\nCONVERSATION SO FAR:\n")
		for _, turn := range in.History {
			label := "USER"
			if turn.Role == models.RoleModel {
				label = "ASSISTANT"
			}
			b.WriteString(label + ": " + turn.Text + "\n")
		}
	}

	return b.String()
}

// attachmentPart converts one attachment into a payload part. Text
// attachments are inlined as labeled text; images become inline data with
// any data-URL prefix stripped.
func attachmentPart(att models.Attachment) Part {
	if !att.IsImage {
		return Part{Text: "ATTACHED FILE " + att.Name + ":\n" + att.Payload}
	}
	return Part{
		InlineData: StripDataURL(att.Payload),
		MimeType:   att.MimeType,
	}
}

// StripDataURL removes a leading "data:<mime>;base64," prefix if present.
func StripDataURL(payload string) string {
	if !strings.HasPrefix(payload, "data:") {
		return payload
	}
	if idx := strings.Index(payload, "base64,"); idx >= 0 {
		return payload[idx+len("base64,"):]
	}
	return payload
}

func truncate(content string) string {
	if len(content) <= fileContentBudget {
		return content
	}
	// Back off to a rune boundary so the cut never splits a multi-byte
	// character.
	cut := fileContentBudget
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + truncationMarker
}
