package main

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fpang/sketch-render/internal/gemini"
	"github.com/fpang/sketch-render/internal/render"
)

func TestHandleRenderValidation(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"invalid JSON", http.MethodPost, "{not json", http.StatusBadRequest},
		{"missing sketch", http.MethodPost, `{"instruction":"render"}`, http.StatusBadRequest},
		{"missing instruction", http.MethodPost, `{"sketch":"abcd"}`, http.StatusBadRequest},
		{"undecodable sketch", http.MethodPost, `{"sketch":"!!!","instruction":"render"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/render", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handleRender(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body: %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestRespondRenderErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid sketch", render.ErrInvalidSketch, http.StatusBadRequest},
		{"model refusal", &gemini.NoImageError{Commentary: "declined"}, http.StatusUnprocessableEntity},
		{"transport failure", errors.New("503 service unavailable"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondRenderError(rec, "render-test", tt.err)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRespondRenderErrorCarriesCommentary(t *testing.T) {
	rec := httptest.NewRecorder()
	respondRenderError(rec, "render-test", &gemini.NoImageError{Commentary: "content policy"})

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body["commentary"] != "content policy" {
		t.Errorf("commentary = %q, want the model's text for diagnosis", body["commentary"])
	}
}

func TestHandleRatios(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/ratios", nil)
	rec := httptest.NewRecorder()
	handleRatios(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	found := false
	for _, ratio := range body["ratios"] {
		if ratio == "16:9" {
			found = true
		}
	}
	if !found {
		t.Error("ratio list missing 16:9")
	}
}

func TestWithGzip(t *testing.T) {
	handler := withGzip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("payload ", 100)))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/render", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatal("response not gzip encoded")
	}
	gz, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("failed to open gzip reader: %v", err)
	}
	defer gz.Close()
	decoded, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("failed to decompress: %v", err)
	}
	if !strings.Contains(string(decoded), "payload") {
		t.Error("decompressed body does not round-trip")
	}

	// Without the header the body passes through unchanged.
	plain := httptest.NewRequest(http.MethodGet, "/api/render", nil)
	plainRec := httptest.NewRecorder()
	handler.ServeHTTP(plainRec, plain)
	if plainRec.Header().Get("Content-Encoding") == "gzip" {
		t.Error("gzip applied without Accept-Encoding")
	}
}
