package hud

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestClip(t *testing.T) {
	assert.Equal(t, "upload started", clip("upload started"))

	long := strings.Repeat("a", maxLineChars+10)
	got := clip(long)
	assert.Len(t, got, maxLineChars)
	assert.True(t, strings.HasSuffix(got, "..."))

	// "é" is two bytes, so an odd cut lands inside one of them.
	accents := strings.Repeat("é", maxLineChars)
	got = clip(accents)
	assert.True(t, utf8.ValidString(got), "clipped line must stay valid UTF-8")
	assert.LessOrEqual(t, len(got), maxLineChars)
	assert.True(t, strings.HasSuffix(got, "é..."))
}
