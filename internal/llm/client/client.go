// Package client is the single gateway to the upstream language models.
// It owns provider instantiation, per-tier generation config and error
// classification; retries are the orchestrator's business, not ours.
package client

import (
	"context"
	"fmt"
	"log"
	"time"

	"codeloom/internal/llm/prompt"
	"codeloom/internal/models"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

const (
	defaultCallTimeout = 120 * time.Second
	defaultMaxTokens   = 32768
)

// GenerationConfig is the enumerated sampling config for one call.
type GenerationConfig struct {
	Temperature float32
	TopK        int32
	TopP        float32
}

// ConfigForTier returns the sampling defaults for a model tier. The
// reasoning tier runs cooler so structured output stays structured.
func ConfigForTier(tier string) GenerationConfig {
	if tier == models.TierReasoning {
		return GenerationConfig{Temperature: 0.3, TopK: 40, TopP: 0.9}
	}
	return GenerationConfig{Temperature: 0.7, TopK: 64, TopP: 0.95}
}

// Gateway is the single-operation capability the orchestrator depends on.
type Gateway interface {
	Generate(ctx context.Context, systemInstruction string, parts []prompt.Part, cfg GenerationConfig) (string, error)
}

// LLMClient adapts one provider chat model to the Gateway contract.
type LLMClient struct {
	chatModel   einomodel.BaseChatModel
	modelName   string
	providerID  string
	callTimeout time.Duration
}

// GeminiModelOptions configures a Gemini-backed client.
type GeminiModelOptions struct {
	Model string
	Cfg   GenerationConfig
}

// ClaudeModelOptions configures an Anthropic-backed client.
type ClaudeModelOptions struct {
	Model string
	Cfg   GenerationConfig
}

// OpenAIModelOptions configures an OpenAI-backed client.
type OpenAIModelOptions struct {
	Model string
	Cfg   GenerationConfig
}

func NewGeminiClient(ctx context.Context, apiKey string, opts GeminiModelOptions) (*LLMClient, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	maxTokens := defaultMaxTokens
	temp := opts.Cfg.Temperature
	topP := opts.Cfg.TopP
	topK := opts.Cfg.TopK
	model, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      genaiClient,
		Model:       opts.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temp,
		TopP:        &topP,
		TopK:        &topK,
	})
	if err != nil {
		log.Printf("Error creating Gemini client: %v", err)
		return nil, err
	}

	return &LLMClient{chatModel: model, modelName: opts.Model, providerID: "gemini", callTimeout: defaultCallTimeout}, nil
}

func NewClaudeClient(ctx context.Context, apiKey string, opts ClaudeModelOptions) (*LLMClient, error) {
	temp := opts.Cfg.Temperature
	topP := opts.Cfg.TopP
	topK := opts.Cfg.TopK
	model, err := claude.NewChatModel(ctx, &claude.Config{
		APIKey:      apiKey,
		Model:       opts.Model,
		MaxTokens:   defaultMaxTokens,
		Temperature: &temp,
		TopP:        &topP,
		TopK:        &topK,
	})
	if err != nil {
		log.Printf("Error creating Claude client: %v", err)
		return nil, err
	}

	return &LLMClient{chatModel: model, modelName: opts.Model, providerID: "anthropic", callTimeout: defaultCallTimeout}, nil
}

func NewOpenAIClient(ctx context.Context, apiKey string, opts OpenAIModelOptions) (*LLMClient, error) {
	temp := opts.Cfg.Temperature
	topP := opts.Cfg.TopP
	maxTokens := defaultMaxTokens
	model, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      apiKey,
		Model:       opts.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temp,
		TopP:        &topP,
	})
	if err != nil {
		log.Printf("Error creating OpenAI client: %v", err)
		return nil, err
	}

	return &LLMClient{chatModel: model, modelName: opts.Model, providerID: "openai", callTimeout: defaultCallTimeout}, nil
}

// SetCallTimeout overrides the per-call wall-clock timeout.
func (c *LLMClient) SetCallTimeout(d time.Duration) {
	if d > 0 {
		c.callTimeout = d
	}
}

// Generate performs one model call and returns the raw text. Failures
// come back as *GatewayError; nothing is retried here.
func (c *LLMClient) Generate(ctx context.Context, systemInstruction string, parts []prompt.Part, cfg GenerationConfig) (string, error) {
	if len(parts) == 0 {
		return "", &GatewayError{Kind: KindInvalidRequest, Err: fmt.Errorf("no parts to send")}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	messages := []*schema.Message{
		schema.SystemMessage(systemInstruction),
		buildUserMessage(parts),
	}

	out, err := c.chatModel.Generate(callCtx, messages,
		einomodel.WithTemperature(cfg.Temperature),
		einomodel.WithTopP(cfg.TopP),
	)
	if err != nil {
		return "", classify(err)
	}
	if out == nil || out.Content == "" {
		return "", &GatewayError{Kind: KindModelError, Err: fmt.Errorf("model %s returned empty content", c.modelName)}
	}
	return out.Content, nil
}

// buildUserMessage folds the ordered parts into a single multimodal user
// message. Text-only payloads stay plain Content so every provider
// accepts them.
func buildUserMessage(parts []prompt.Part) *schema.Message {
	textOnly := true
	for _, p := range parts {
		if p.InlineData != "" {
			textOnly = false
			break
		}
	}

	if textOnly {
		var content string
		for i, p := range parts {
			if i > 0 {
				content += "\n\n"
			}
			content += p.Text
		}
		return schema.UserMessage(content)
	}

	multi := make([]schema.ChatMessagePart, 0, len(parts))
	for _, p := range parts {
		if p.InlineData != "" {
			multi = append(multi, schema.ChatMessagePart{
				Type: schema.ChatMessagePartTypeImageURL,
				ImageURL: &schema.ChatMessageImageURL{
					URL:      "data:" + p.MimeType + ";base64," + p.InlineData,
					MIMEType: p.MimeType,
				},
			})
			continue
		}
		multi = append(multi, schema.ChatMessagePart{
			Type: schema.ChatMessagePartTypeText,
			Text: p.Text,
		})
	}
	return &schema.Message{Role: schema.User, MultiContent: multi}
}
