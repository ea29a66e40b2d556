package constants

import (
	"path/filepath"
	"strings"
)

const MaxCoverUploadBytes = 5 * 1024 * 1024

// IsCoverImage: ekstensi yang boleh dipakai sebagai sampul buku.
func IsCoverImage(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".webp":
		return true
	default:
		return false
	}
}
