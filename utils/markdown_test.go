package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMarkdownFilename(t *testing.T) {
	assert.True(t, IsMarkdownFilename("README.md"))
	assert.True(t, IsMarkdownFilename("notes.MARKDOWN"))
	assert.False(t, IsMarkdownFilename("notes.txt"))
	assert.False(t, IsMarkdownFilename("md"))
}

func TestRenderMarkdown(t *testing.T) {
	html, err := RenderMarkdown([]byte("# Title\n\nSome *emphasis*."))
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Title</h1>")
	assert.Contains(t, html, "<em>emphasis</em>")
}

func TestRenderMarkdownTables(t *testing.T) {
	// GFM tables are part of the enabled extension set.
	html, err := RenderMarkdown([]byte("| a | b |\n|---|---|\n| 1 | 2 |"))
	require.NoError(t, err)
	assert.Contains(t, html, "<table>")
}
