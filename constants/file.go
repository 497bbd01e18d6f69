package constants

import "strings"

// ImageExtensions holds the image file extensions the recognition service
// accepts. Extensions are stored without the leading dot, lowercase.
var ImageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"bmp":  {},
	"webp": {},
	"ico":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsImageExt reports whether the extension (with or without a leading dot)
// is in the supported image allow-list.
func IsImageExt(ext string) bool {
	_, ok := ImageExtensions[NormalizeExt(ext)]
	return ok
}

// SupportedExtensions returns the allow-list in display order.
func SupportedExtensions() []string {
	return []string{"jpg", "jpeg", "png", "gif", "bmp", "webp", "ico"}
}
