package chat

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const systemInstruction = `Eres Mon, la guía AI brutalista para el modpack 'GitanoMongoloMon'.
Tu personalidad es directa, minimalista, ligeramente oscura y profesional.
El modpack cuenta con más de 100 mods, centrados en reforma de terrenos, IA depredadora avanzada y automatización técnica.
Responde preguntas de los usuarios sobre estrategias de supervivencia, mods técnicos o configuración del servidor.
Mantén tus respuestas concisas y formateadas en markdown simple.`

// GeminiGenerator calls the Gemini API.
type GeminiGenerator struct {
	client          *genai.Client
	model           string
	temperature     float32
	maxOutputTokens int32
}

// NewGeminiGenerator creates a generator for model.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, temperature float64, maxOutputTokens int) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = "gemini-3-flash-preview"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiGenerator{
		client:          client,
		model:           model,
		temperature:     float32(temperature),
		maxOutputTokens: int32(maxOutputTokens),
	}, nil
}

// Generate returns the model's text for prompt.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
			Temperature:       genai.Ptr(g.temperature),
			MaxOutputTokens:   g.maxOutputTokens,
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", errors.New("gemini returned no text")
	}
	return text, nil
}
