package sketch

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
)

// jpegQuality is used when encoding results as JPEG.
const jpegQuality = 90

// EncodePNG serializes an image as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// ToBase64 serializes an image in the given format ("png" or "jpeg") and
// returns the standard base64 encoding of the bytes, without a data-URI
// prefix.
func ToBase64(img image.Image, format string) (string, error) {
	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "png", "":
		if err := png.Encode(&buf, img); err != nil {
			return "", fmt.Errorf("failed to encode PNG: %w", err)
		}
	case "jpeg", "jpg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return "", fmt.Errorf("failed to encode JPEG: %w", err)
		}
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
