package sketch

import (
	"encoding/base64"
	"image"
	"image/color"
	"testing"
)

// encodeTestPNG returns the base64 of a small solid-color PNG.
func encodeTestPNG(t *testing.T, w, h int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	data, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("failed to encode test PNG: %v", err)
	}
	return base64.StdEncoding.EncodeToString(data)
}

func TestDecodeBase64DataURI(t *testing.T) {
	payload := encodeTestPNG(t, 4, 4, color.White)

	src, ok := DecodeBase64("data:image/png;base64," + payload)
	if !ok {
		t.Fatal("expected successful decode")
	}
	if src.MIMEType != "image/png" {
		t.Errorf("MIME type = %q, want %q", src.MIMEType, "image/png")
	}
	if b := src.Image.Bounds(); b.Dx() != 4 || b.Dy() != 4 {
		t.Errorf("decoded size = %dx%d, want 4x4", b.Dx(), b.Dy())
	}
}

func TestDecodeBase64BarePayload(t *testing.T) {
	payload := encodeTestPNG(t, 2, 2, color.Black)

	src, ok := DecodeBase64(payload)
	if !ok {
		t.Fatal("expected successful decode")
	}
	if src.MIMEType != DefaultMIMEType {
		t.Errorf("MIME type = %q, want assumed default %q", src.MIMEType, DefaultMIMEType)
	}
}

func TestDecodeBase64Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty string", ""},
		{"garbage", "this is not base64!!!"},
		{"valid base64, not an image", base64.StdEncoding.EncodeToString([]byte("hello world"))},
		{"malformed data URI", "data:image/png,no-base64-marker"},
		{"data URI with bad payload", "data:image/png;base64,%%%%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, ok := DecodeBase64(tt.in)
			if ok {
				t.Error("expected no-image result for malformed input")
			}
			if src != nil {
				t.Error("source should be nil when decode fails")
			}
		})
	}
}

func TestDecodeBase64NoCaptureInfo(t *testing.T) {
	// A synthetic PNG has no EXIF block; Capture should be nil, not an error.
	payload := encodeTestPNG(t, 4, 4, color.White)
	src, ok := DecodeBase64(payload)
	if !ok {
		t.Fatal("expected successful decode")
	}
	if src.Capture != nil {
		t.Errorf("expected nil capture info for synthetic PNG, got %+v", src.Capture)
	}
}
