package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := string(RenderMarkdown("hello <script>alert(1)</script> **world**"))
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "<strong>world</strong>")
}

func TestRenderMarkdownLinksOpenInNewTab(t *testing.T) {
	out := string(RenderMarkdown("see https://example.com"))
	assert.True(t, strings.Contains(out, `target="_blank"`), out)
}

func TestPositiveInt(t *testing.T) {
	n, ok := PositiveInt("", 7)
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	n, ok = PositiveInt("3", 7)
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = PositiveInt("0", 7)
	assert.False(t, ok)
	_, ok = PositiveInt("abc", 7)
	assert.False(t, ok)
}
