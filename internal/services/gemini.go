package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/questforge/questforge/pkg/game"
	"github.com/questforge/questforge/pkg/prompts"
)

const (
	DefaultGeminiModel       = "gemini-2.5-flash"
	DefaultGeminiTemperature = 0.9
)

// GeminiOracle implements Oracle using the Google Generative AI SDK.
// It is the system's primary external-failure boundary: transport and
// parse failures are logged and converted to the fallback payload, so
// the state machine never sees an oracle-level error.
type GeminiOracle struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *slog.Logger
}

// Ensure GeminiOracle implements Oracle interface
var _ Oracle = (*GeminiOracle)(nil)

// NewGeminiOracle creates a Gemini-backed oracle. The model is pinned
// to JSON output and framed with the QuestForge system prompt.
func NewGeminiOracle(ctx context.Context, apiKey, modelName string, logger *slog.Logger) (*GeminiOracle, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompts.SystemPrompt)},
	}
	model.GenerationConfig.ResponseMIMEType = "application/json"
	model.SetTemperature(DefaultGeminiTemperature)

	return &GeminiOracle{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (g *GeminiOracle) Open(ctx context.Context, theme game.Theme, playerName, language string) (game.RawPayload, error) {
	return g.generate(ctx, prompts.Opening(theme, playerName, language)), nil
}

func (g *GeminiOracle) Continue(ctx context.Context, s *game.Session, action string) (game.RawPayload, error) {
	return g.generate(ctx, prompts.Continue(s, action)), nil
}

// Ready reports whether the client is usable. The SDK validates the
// key lazily, so this only checks construction state.
func (g *GeminiOracle) Ready(ctx context.Context) error {
	if g.client == nil {
		return fmt.Errorf("gemini client not initialized")
	}
	return nil
}

func (g *GeminiOracle) Close() error {
	return g.client.Close()
}

// generate calls Gemini and returns the raw payload, or the fixed
// fallback on any failure. Cancellation and timeouts land here too.
func (g *GeminiOracle) generate(ctx context.Context, prompt string) game.RawPayload {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		g.logger.Error("Gemini request failed", "error", err)
		return FallbackPayload()
	}

	text, err := extractText(resp)
	if err != nil {
		g.logger.Error("Unusable Gemini response", "error", err)
		return FallbackPayload()
	}

	payload := stripFences(text)
	if !json.Valid([]byte(payload)) {
		g.logger.Error("Gemini returned invalid JSON", "length", len(payload))
		return FallbackPayload()
	}
	return game.RawPayload(payload)
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected part type %T", resp.Candidates[0].Content.Parts[0])
	}
	return string(text), nil
}

// stripFences removes markdown code fences the model sometimes wraps
// around its JSON despite the response MIME type.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
