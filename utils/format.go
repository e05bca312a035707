package utils

import (
	"fmt"
	"strings"
)

// maxDisplayNameLength is the longest filename shown untruncated.
const maxDisplayNameLength = 30

// TruncateFilename shortens a filename for display, keeping the first 30
// characters and appending an ellipsis. The untruncated name is stored
// separately on the file record.
func TruncateFilename(name string) string {
	if len(name) > maxDisplayNameLength {
		return name[:maxDisplayNameLength] + "..."
	}
	return name
}

// HasVisibleCharacters reports whether s contains anything besides whitespace.
func HasVisibleCharacters(s string) bool {
	return strings.TrimSpace(s) != ""
}

// FormatFileSize renders a byte count for display: "512 B", "1.5 KB",
// "2.0 MB", "1.0 GB". One decimal above the byte range.
func FormatFileSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1048576:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	case bytes < 1073741824:
		return fmt.Sprintf("%.1f MB", float64(bytes)/1048576)
	default:
		return fmt.Sprintf("%.1f GB", float64(bytes)/1073741824)
	}
}
