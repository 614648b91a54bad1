package chat

import (
	"context"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/gitanomongolomon/gmm-site/pkg/util/errorutil"
)

// Canned replies used when the model cannot be reached.
const (
	NoKeyReply   = "[Sin clave de API] Gemini no está disponible en esta sesión."
	OfflineReply = "El sistema está temporalmente fuera de línea. Por ahora, la supervivencia es tu responsabilidad."
)

// MaxPromptLength caps the prompt forwarded to the model.
const MaxPromptLength = 2000

// Generator produces a completion for a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service answers chat prompts. It never fails because of the model: missing credentials and
// upstream errors turn into canned replies.
type Service struct {
	generator Generator
	logger    *zap.Logger
}

// NewService builds the chat service. A nil generator means no API key is configured.
func NewService(generator Generator, logger *zap.Logger) *Service {
	return &Service{generator: generator, logger: logger}
}

// Configured reports whether a model is wired.
func (s *Service) Configured() bool {
	return s.generator != nil
}

// Ask returns the assistant reply for prompt.
func (s *Service) Ask(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", apperrors.NewValidationError("prompt is required", nil)
	}
	if len([]rune(prompt)) > MaxPromptLength {
		return "", apperrors.NewValidationError("prompt is too long", map[string]any{"max_length": MaxPromptLength})
	}
	if s.generator == nil {
		return NoKeyReply, nil
	}

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("chat generation failed", zap.Error(err))
		return OfflineReply, nil
	}
	return text, nil
}
