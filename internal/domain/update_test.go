package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Nuevo Update!! 2025":        "nuevo-update-2025",
		"  Temporada   de Invierno ": "temporada-de-invierno",
		"Versión 1.2_beta":           "version-1.2_beta",
		"--ya--slug--":               "ya-slug",
		"¿¡!?":                       "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	for _, in := range []string{"Nuevo Update!! 2025", "Árbol de Navidad", "a -- b", "x.y_z"} {
		once := Slugify(in)
		assert.Equal(t, once, Slugify(once), in)
	}
}

func TestIsFresh(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	post := &UpdatePost{CreatedAt: now.Add(-BannerWindow)}
	assert.False(t, post.IsFresh(now, BannerWindow), "exactly at the window edge is stale")

	post.CreatedAt = now.Add(-BannerWindow + time.Second)
	assert.True(t, post.IsFresh(now, BannerWindow))

	var missing *UpdatePost
	assert.False(t, missing.IsFresh(now, BannerWindow))
	assert.False(t, (&UpdatePost{}).IsFresh(now, BannerWindow))
}

func TestPathKey(t *testing.T) {
	assert.Equal(t, "temporada", (&UpdatePost{ID: 4, Slug: "temporada"}).PathKey())
	assert.Equal(t, "4", (&UpdatePost{ID: 4}).PathKey())
}
