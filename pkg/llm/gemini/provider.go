package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"perry-be/pkg/llm"

	"google.golang.org/genai"
)

type GeminiProvider struct {
	client    *genai.Client
	modelName string
}

// Ensure GeminiProvider implements LLMProvider
var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty: %w", llm.ErrAuth)
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiProvider{
		client:    client,
		modelName: modelName,
	}, nil
}

func (g *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	// 1. Process Options
	options := &llm.Options{
		Temperature: 0.7, // Default
	}
	for _, opt := range opts {
		opt(options)
	}

	// 2. Map generic messages to genai contents, peeling off a leading
	// system message into the model config
	var system string
	var contents []*genai.Content
	for _, msg := range history {
		var role genai.Role
		switch msg.Role {
		case "assistant", "model":
			role = genai.RoleModel
		case "system":
			system = msg.Content
			continue
		default:
			role = genai.RoleUser
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}

	// 3. Model config
	temp := float32(options.Temperature)
	cfg := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if options.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(options.MaxTokens)
	}

	model := g.modelName
	if options.Model != "" {
		model = options.Model
	}

	// 4. Call the API
	res, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) &&
			(apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden) {
			return "", fmt.Errorf("gemini rejected credentials: %w", llm.ErrAuth)
		}
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	// 5. Extract only the text
	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}

	return text, nil
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return g.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
