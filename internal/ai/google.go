package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gastosapp/gastos-backend/internal/aiconfig"
)

// Keys issued by Google AI Studio start with this prefix and go in the query
// string; anything else is treated as an OAuth style bearer token.
const googleKeyPrefix = "AIza"

type googleClient struct {
	http *http.Client
}

type googleGenerateRequest struct {
	Contents         []googleContent        `json:"contents"`
	GenerationConfig googleGenerationConfig `json:"generationConfig"`
}

type googleContent struct {
	Role  string       `json:"role"`
	Parts []googlePart `json:"parts"`
}

type googlePart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *googleInlineData `json:"inlineData,omitempty"`
}

type googleInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type googleGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type googleGenerateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *googleError `json:"error"`
}

type googleError struct {
	Message string `json:"message"`
}

// generateContent posts the parts to {baseUrl}/models/{model}:generateContent
// and returns the joined candidate text.
func (c *googleClient) generateContent(ctx context.Context, settings *aiconfig.ResolvedSettings, parts []googlePart, opts generationOptions) (string, error) {
	model := settings.Model
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	endpoint := strings.TrimSuffix(settings.BaseURL, "/") + "/" + model + ":generateContent"

	payload := googleGenerateRequest{
		Contents: []googleContent{{Role: "user", Parts: parts}},
		GenerationConfig: googleGenerationConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxTokens,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	applyGoogleAuth(req, settings.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling google: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading google response: %w", err)
	}

	var parsed googleGenerateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decoding google response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("google: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("google: unexpected status %d", resp.StatusCode)
	}
	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("google: empty response")
	}

	var texts []string
	for _, part := range parsed.Candidates[0].Content.Parts {
		texts = append(texts, part.Text)
	}
	return strings.Join(texts, "\n"), nil
}

// listModels fetches {baseUrl}/models and returns the raw list.
func (c *googleClient) listModels(ctx context.Context, settings *aiconfig.ResolvedSettings) (json.RawMessage, error) {
	endpoint := strings.TrimSuffix(settings.BaseURL, "/") + "/models"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	applyGoogleAuth(req, settings.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling google: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading google response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google: %s", strings.TrimSpace(string(raw)))
	}

	var envelope struct {
		Models json.RawMessage `json:"models"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Models) > 0 {
		return envelope.Models, nil
	}
	return raw, nil
}

func applyGoogleAuth(req *http.Request, apiKey string) {
	if strings.HasPrefix(apiKey, googleKeyPrefix) {
		q := req.URL.Query()
		q.Set("key", apiKey)
		req.URL.RawQuery = q.Encode()
		return
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
}
