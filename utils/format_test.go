package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"short name unchanged", "report.pdf", "report.pdf"},
		{"exactly thirty characters", strings.Repeat("a", 30), strings.Repeat("a", 30)},
		{"thirty-one characters truncated", strings.Repeat("a", 31), strings.Repeat("a", 30) + "..."},
		{"long name truncated", strings.Repeat("b", 50) + ".txt", strings.Repeat("b", 30) + "..."},
		{"empty name", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateFilename(tt.input))
		})
	}
}

func TestHasVisibleCharacters(t *testing.T) {
	assert.True(t, HasVisibleCharacters("Documents"))
	assert.True(t, HasVisibleCharacters("  a  "))
	assert.False(t, HasVisibleCharacters(""))
	assert.False(t, HasVisibleCharacters("   "))
	assert.False(t, HasVisibleCharacters("\t\n"))
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048575, "1024.0 KB"},
		{1048576, "1.0 MB"},
		{2097152, "2.0 MB"},
		{1073741823, "1024.0 MB"},
		{1073741824, "1.0 GB"},
		{5368709120, "5.0 GB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatFileSize(tt.bytes), "bytes=%d", tt.bytes)
	}
}
