package telemetry

import (
	"net/url"
	"strings"
)

const anonymousPlayer = "anon"

func avatarSeed(name string) string {
	if name == "" {
		name = anonymousPlayer
	}
	return url.PathEscape(name)
}

// FirstAvatar is the head render tried first for a player.
func FirstAvatar(name string) string {
	return "https://minotar.net/helm/" + avatarSeed(name) + "/100.png"
}

// FallbackAvatar is the alternate render tried when the head render fails.
func FallbackAvatar(name string) string {
	return "https://minotar.net/avatar/" + avatarSeed(name) + "/100.png"
}

// PlaceholderAvatar is a generated image keyed by name that always loads.
func PlaceholderAvatar(name string) string {
	if name == "" {
		name = anonymousPlayer
	}
	return "https://api.dicebear.com/7.x/pixel-art/svg?seed=" + url.QueryEscape(name) + "&backgroundColor=b6e3f4"
}

// NextAvatar returns the image to try after failedURL did not load.
func NextAvatar(name, failedURL string) string {
	if strings.Contains(failedURL, "/helm/") {
		return FallbackAvatar(name)
	}
	return PlaceholderAvatar(name)
}

// AvatarChain lists every tier in the order they are tried.
func AvatarChain(name string) []string {
	return []string{FirstAvatar(name), FallbackAvatar(name), PlaceholderAvatar(name)}
}
