package mimetypes

import (
	"mime"
	"strings"
)

type MIME string

const (
	Unknown MIME = "unknown"

	ImagePNG  MIME = "image/png"
	ImageJPEG MIME = "image/jpeg"
	ImageGIF  MIME = "image/gif"
	ImageWEBP MIME = "image/webp"
)

// Images lists the attachment types accepted for messages and profile pictures.
var Images = []MIME{ImagePNG, ImageJPEG, ImageGIF, ImageWEBP}

func Matches(detected string, expected MIME) (MIME, bool) {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return Unknown, false
	}
	return expected, mt == string(expected)
}

// ToImage returns the accepted image type matching detected, or Unknown.
func ToImage(detected string) (MIME, bool) {
	for _, candidate := range Images {
		if m, ok := Matches(detected, candidate); ok {
			return m, true
		}
	}
	return Unknown, false
}

// Extension is used to suffix object keys.
func (m MIME) Extension() string {
	if !strings.HasPrefix(string(m), "image/") {
		return ""
	}
	return "." + strings.TrimPrefix(string(m), "image/")
}
