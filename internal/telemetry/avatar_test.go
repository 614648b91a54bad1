package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvatarChain(t *testing.T) {
	chain := AvatarChain("Notch")
	assert.Equal(t, []string{
		"https://minotar.net/helm/Notch/100.png",
		"https://minotar.net/avatar/Notch/100.png",
		"https://api.dicebear.com/7.x/pixel-art/svg?seed=Notch&backgroundColor=b6e3f4",
	}, chain)
}

func TestNextAvatarWalksTiers(t *testing.T) {
	first := FirstAvatar("Notch")
	second := NextAvatar("Notch", first)
	assert.Equal(t, FallbackAvatar("Notch"), second)

	third := NextAvatar("Notch", second)
	assert.Equal(t, PlaceholderAvatar("Notch"), third)

	assert.Equal(t, third, NextAvatar("Notch", third), "placeholder is terminal")
}

func TestAvatarEmptyName(t *testing.T) {
	assert.Equal(t, "https://minotar.net/helm/anon/100.png", FirstAvatar(""))
	assert.Contains(t, PlaceholderAvatar(""), "seed=anon")
}
