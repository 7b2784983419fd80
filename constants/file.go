package constants

import "strings"

// Source formats understood by the text/table sources.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
)

// FileTypes holds the formats a document can be decoded from.
var FileTypes = []string{PDF, IMAGE}

// ImageExtensions holds the raster formats that are OCR'd or converted to PDF.
var ImageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tif":  {},
	"tiff": {},
	"bmp":  {},
	"webp": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// IsImageExt reports whether ext (with or without dot) is a supported raster format.
func IsImageExt(ext string) bool {
	_, ok := ImageExtensions[NormalizeExt(ext)]
	return ok
}

// MapExtToFormat returns PDF, IMAGE, or "" for unsupported extensions.
func MapExtToFormat(ext string) string {
	ext = NormalizeExt(ext)
	switch {
	case ext == "pdf":
		return PDF
	case IsImageExt(ext):
		return IMAGE
	default:
		return ""
	}
}
