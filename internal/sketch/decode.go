// Package sketch implements decoding, analysis, and normalization of
// hand-drawn sketch images ahead of AI rendering.
package sketch

import (
	"bytes"
	"encoding/base64"
	"image"
	"regexp"
	"strings"
	"time"

	// Register decoders for the input formats we accept.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
)

// DefaultMIMEType is assumed for base64 payloads without a data-URI prefix.
const DefaultMIMEType = "image/jpeg"

// dataURIPattern matches a data-URI header: data:<mime>;base64,<payload>
var dataURIPattern = regexp.MustCompile(`^data:([^;]+);base64,(.+)$`)

// Source is a decoded input sketch.
type Source struct {
	// Image is the decoded raster.
	Image image.Image

	// MIMEType is the type declared by the data-URI header, or
	// DefaultMIMEType for bare payloads.
	MIMEType string

	// Capture holds EXIF-derived capture information, if any was present
	// in the encoded bytes. Most hand-drawn sketches carry none; scanned
	// or photographed sketches often do.
	Capture *CaptureInfo
}

// DecodeBase64 converts a base64 string, with or without a data-URI prefix,
// into a decoded sketch. Malformed input (bad base64, undecodable bytes)
// yields ok=false rather than an error: the caller gets an explicit
// "no image" result and the reason is logged here.
func DecodeBase64(encoded string) (*Source, bool) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		log.Warn().Msg("Empty base64 image payload")
		return nil, false
	}

	payload := encoded
	mimeType := DefaultMIMEType

	if strings.HasPrefix(encoded, "data:") {
		m := dataURIPattern.FindStringSubmatch(encoded)
		if m == nil {
			log.Warn().Msg("Malformed data URI prefix on image payload")
			return nil, false
		}
		mimeType = m[1]
		payload = m[2]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to decode base64 image payload")
		return nil, false
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Warn().Err(err).Int("bytes", len(data)).Msg("Failed to decode image bytes")
		return nil, false
	}

	src := &Source{
		Image:    img,
		MIMEType: mimeType,
		Capture:  extractCaptureInfo(data),
	}

	bounds := img.Bounds()
	log.Debug().
		Str("format", format).
		Str("mime", mimeType).
		Int("width", bounds.Dx()).
		Int("height", bounds.Dy()).
		Bool("has_capture_info", src.Capture != nil).
		Msg("Sketch decoded")

	return src, true
}

// CaptureInfo is EXIF metadata extracted from a scanned or photographed
// sketch. It feeds the prompt builder so the model knows how the drawing
// was captured.
type CaptureInfo struct {
	CameraMake  string
	CameraModel string
	DateTaken   time.Time
	HasDate     bool
}

// extractCaptureInfo pulls camera and timestamp EXIF fields out of the raw
// image bytes. Returns nil when no usable metadata is present; metadata
// failures never fail the decode.
func extractCaptureInfo(data []byte) *CaptureInfo {
	exifData, err := imagemeta.Decode(bytes.NewReader(data))
	if err != nil {
		log.Debug().Err(err).Msg("No EXIF metadata in sketch bytes")
		return nil
	}

	info := &CaptureInfo{
		CameraMake:  strings.TrimSpace(exifData.Make),
		CameraModel: strings.TrimSpace(exifData.Model),
	}

	// Timestamp fallback chain: DateTimeOriginal > CreateDate > ModifyDate
	switch {
	case !exifData.DateTimeOriginal().IsZero():
		info.DateTaken = exifData.DateTimeOriginal()
		info.HasDate = true
	case !exifData.CreateDate().IsZero():
		info.DateTaken = exifData.CreateDate()
		info.HasDate = true
	case !exifData.ModifyDate().IsZero():
		info.DateTaken = exifData.ModifyDate()
		info.HasDate = true
	}

	if info.CameraMake == "" && info.CameraModel == "" && !info.HasDate {
		return nil
	}
	return info
}
