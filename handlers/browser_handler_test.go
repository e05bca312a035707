package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlobPathAllowed(t *testing.T) {
	tests := []struct {
		name string
		path string
		want bool
	}{
		{"own blob", "files/user-1/1_a.txt", true},
		{"own nested blob", "files/user-1/1_a.txt.thumb.webp", true},
		{"empty", "", false},
		{"foreign owner", "files/user-2/1_a.txt", false},
		{"outside files", "other/user-1/1_a.txt", false},
		{"traversal into foreign subtree", "files/user-1/../user-2/1_secret.txt", false},
		{"prefix satisfied before cleaning", "files/user-1/..", false},
		{"absolute", "/files/user-1/1_a.txt", false},
		{"double slash", "files//user-1/1_a.txt", false},
		{"owner prefix without slash", "files/user-10/1_a.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, blobPathAllowed(tt.path, "user-1"))
		})
	}
}
