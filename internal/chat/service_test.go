package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/gitanomongolomon/gmm-site/pkg/util/errorutil"
)

type fakeGenerator struct {
	reply  string
	err    error
	prompt string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.reply, g.err
}

func TestAskWithoutKey(t *testing.T) {
	svc := NewService(nil, zap.NewNop())
	assert.False(t, svc.Configured())

	reply, err := svc.Ask(context.Background(), "¿dónde está el spawn?")
	require.NoError(t, err)
	assert.Equal(t, NoKeyReply, reply)
}

func TestAskForwardsTrimmedPrompt(t *testing.T) {
	gen := &fakeGenerator{reply: "Al norte."}
	svc := NewService(gen, zap.NewNop())

	reply, err := svc.Ask(context.Background(), "  ¿dónde está el spawn?  ")
	require.NoError(t, err)
	assert.Equal(t, "Al norte.", reply)
	assert.Equal(t, "¿dónde está el spawn?", gen.prompt)
}

func TestAskUpstreamFailure(t *testing.T) {
	svc := NewService(&fakeGenerator{err: errors.New("quota exceeded")}, zap.NewNop())

	reply, err := svc.Ask(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, OfflineReply, reply)
}

func TestAskValidation(t *testing.T) {
	svc := NewService(&fakeGenerator{}, zap.NewNop())

	_, err := svc.Ask(context.Background(), "   ")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, apperrors.CodeValidation, domainErr.Code)

	_, err = svc.Ask(context.Background(), strings.Repeat("a", MaxPromptLength+1))
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, apperrors.CodeValidation, domainErr.Code)
}
