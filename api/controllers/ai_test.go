package controllers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/gastosapp/gastos-backend/internal/ai"
)

type stubAIService struct {
	extraction *ai.TicketExtraction
	gotImage   []byte
	gotMime    string
}

func (s *stubAIService) ExtractTicket(ctx context.Context, userID uuid.UUID, image []byte, mimeType string) (*ai.TicketExtraction, error) {
	s.gotImage = image
	s.gotMime = mimeType
	return s.extraction, nil
}

func (s *stubAIService) ExecutePrompt(ctx context.Context, userID uuid.UUID, req ai.PromptRequest) (*ai.PromptResponse, error) {
	return &ai.PromptResponse{OK: true, Text: "ok"}, nil
}

func (s *stubAIService) Recommend(ctx context.Context, userID uuid.UUID) (*ai.RecommendationsResponse, error) {
	return &ai.RecommendationsResponse{}, nil
}

func (s *stubAIService) ListModels(ctx context.Context, userID uuid.UUID) (*ai.ModelsResponse, error) {
	return &ai.ModelsResponse{OK: true}, nil
}

func multipartUpload(t *testing.T, field, filename, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + filename + `"`}
	header["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestExtractTicketForwardsUpload(t *testing.T) {
	svc := &stubAIService{extraction: &ai.TicketExtraction{Description: "Supermercado", Amount: 1520.5}}
	handler := ExtractTicket(svc, nil)

	body, contentType := multipartUpload(t, "file", "ticket.jpg", "image/jpeg", []byte("fake-image-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/upload-ticket", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body %s", resp.Code, resp.Body.String())
	}
	if string(svc.gotImage) != "fake-image-bytes" {
		t.Fatalf("unexpected image payload: %q", svc.gotImage)
	}
	if svc.gotMime != "image/jpeg" {
		t.Fatalf("unexpected mime: %q", svc.gotMime)
	}
	if !strings.Contains(resp.Body.String(), "Supermercado") {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestExtractTicketRejectsMissingFile(t *testing.T) {
	handler := ExtractTicket(&stubAIService{}, nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("note", "no file here"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/upload-ticket", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "no file uploaded") {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestExtractTicketRejectsNonMultipart(t *testing.T) {
	handler := ExtractTicket(&stubAIService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/upload-ticket", strings.NewReader(`{"file":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
