package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gastosapp/gastos-backend/internal/aiconfig"
	"github.com/gastosapp/gastos-backend/pkg/config"
	"github.com/gastosapp/gastos-backend/pkg/db/models"
	"github.com/gastosapp/gastos-backend/pkg/enums"
	pkgerrors "github.com/gastosapp/gastos-backend/pkg/errors"
	"github.com/google/uuid"
)

const (
	unconfiguredMessage = "Por favor configura una API Key de Google o OpenAI primero."
	adviceLimit         = 50

	extractPrompt = "Extract the following details from this receipt image: description (store/item), total amount (number), currency (ARS or USD), and a short category. Return ONLY a JSON object with keys: description, amount, currency, category."
	advicePrompt  = "Analiza estas transacciones financieras y dame 3 consejos cortos y accionables en español para ahorrar más. Devuelve SOLO los consejos en un array JSON de strings. Transacciones: %s"
)

// Service runs the AI-backed features: receipt extraction, raw prompt
// execution, saving advice, and the provider's model catalog.
type Service interface {
	ExtractTicket(ctx context.Context, userID uuid.UUID, image []byte, mimeType string) (*TicketExtraction, error)
	ExecutePrompt(ctx context.Context, userID uuid.UUID, req PromptRequest) (*PromptResponse, error)
	Recommend(ctx context.Context, userID uuid.UUID) (*RecommendationsResponse, error)
	ListModels(ctx context.Context, userID uuid.UUID) (*ModelsResponse, error)
}

type service struct {
	resolver credentialResolver
	txs      transactionLister
	google   *googleClient
	openai   *openAIClient
}

type credentialResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (*aiconfig.ResolvedSettings, error)
}

type transactionLister interface {
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error)
}

// ServiceParams bundles the dependencies required to build the AI service.
type ServiceParams struct {
	Resolver     credentialResolver
	Transactions transactionLister
	Cfg          config.AIConfig
	HTTPClient   *http.Client
}

// NewService constructs the AI service. The HTTP client is injectable for
// tests; by default both providers share one bounded by the configured
// timeout.
func NewService(params ServiceParams) (Service, error) {
	if params.Resolver == nil {
		return nil, fmt.Errorf("credential resolver is required")
	}
	if params.Transactions == nil {
		return nil, fmt.Errorf("transaction lister is required")
	}
	client := params.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: params.Cfg.RequestTimeout}
	}
	return &service{
		resolver: params.Resolver,
		txs:      params.Transactions,
		google:   &googleClient{http: client},
		openai:   &openAIClient{http: client},
	}, nil
}

// ExtractTicket asks the configured vision model to pull structured data out
// of a receipt image.
func (s *service) ExtractTicket(ctx context.Context, userID uuid.UUID, image []byte, mimeType string) (*TicketExtraction, error) {
	if len(image) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no file uploaded")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	settings, err := s.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	text, err := s.generate(ctx, settings, extractPrompt, image, mimeType, defaultGeneration)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "Error al conectar con la IA. Revisa tu API Key.")
	}

	var extraction TicketExtraction
	if err := json.Unmarshal([]byte(stripJSONFences(text)), &extraction); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "Respuesta no válida de la IA")
	}
	return &extraction, nil
}

// ExecutePrompt runs a caller-supplied prompt through the resolved provider.
func (s *service) ExecutePrompt(ctx context.Context, userID uuid.UUID, req PromptRequest) (*PromptResponse, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prompt is required")
	}

	settings, err := s.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	opts := defaultGeneration
	if req.Temperature != nil {
		opts.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		opts.MaxTokens = *req.MaxTokens
	}

	text, err := s.generate(ctx, settings, req.Prompt, nil, "", opts)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "Error al conectar con la IA. Revisa tu API Key.")
	}
	return &PromptResponse{OK: true, Text: text}, nil
}

// Recommend generates short saving advice from the user's recent movements.
// It degrades instead of failing: missing credentials or upstream errors
// come back as advice strings so the widget always renders.
func (s *service) Recommend(ctx context.Context, userID uuid.UUID) (*RecommendationsResponse, error) {
	settings, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		if errors.Is(err, aiconfig.ErrUnconfigured) {
			return &RecommendationsResponse{
				Recommendations: []string{"Configura tu API Key en ajustes para recibir consejos."},
			}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve ai credentials")
	}

	txs, err := s.txs.ListRecent(ctx, userID, adviceLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list transactions")
	}

	history, err := json.Marshal(txs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode transactions")
	}

	text, err := s.generate(ctx, settings, fmt.Sprintf(advicePrompt, history), nil, "", defaultGeneration)
	if err != nil {
		return &RecommendationsResponse{
			Recommendations: []string{"Error IA: " + err.Error()},
		}, nil
	}

	clean := stripJSONFences(text)
	var recommendations []string
	if err := json.Unmarshal([]byte(clean), &recommendations); err != nil {
		recommendations = []string{clean}
	}
	return &RecommendationsResponse{Recommendations: recommendations}, nil
}

// ListModels relays the provider's model catalog.
func (s *service) ListModels(ctx context.Context, userID uuid.UUID) (*ModelsResponse, error) {
	settings, err := s.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	var models json.RawMessage
	switch settings.Provider {
	case enums.AIProviderGoogle:
		models, err = s.google.listModels(ctx, settings)
	case enums.AIProviderOpenAI:
		models, err = s.openai.listModels(ctx, settings)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unsupported provider %q", settings.Provider))
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "no se pudo obtener la lista de modelos")
	}
	return &ModelsResponse{OK: true, Models: models}, nil
}

func (s *service) resolve(ctx context.Context, userID uuid.UUID) (*aiconfig.ResolvedSettings, error) {
	settings, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		if errors.Is(err, aiconfig.ErrUnconfigured) {
			return nil, pkgerrors.New(pkgerrors.CodeUnconfigured, unconfiguredMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve ai credentials")
	}
	return settings, nil
}

// generationOptions tune a single completion call.
type generationOptions struct {
	Temperature float64
	MaxTokens   int
}

var defaultGeneration = generationOptions{Temperature: 0.2, MaxTokens: 512}

func (s *service) generate(ctx context.Context, settings *aiconfig.ResolvedSettings, prompt string, image []byte, mimeType string, opts generationOptions) (string, error) {
	switch settings.Provider {
	case enums.AIProviderGoogle:
		parts := []googlePart{{Text: prompt}}
		if len(image) > 0 {
			parts = append(parts, googlePart{
				InlineData: &googleInlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				},
			})
		}
		return s.google.generateContent(ctx, settings, parts, opts)
	case enums.AIProviderOpenAI:
		return s.openai.chat(ctx, settings, prompt, image, mimeType, opts)
	default:
		return "", fmt.Errorf("unsupported provider %q", settings.Provider)
	}
}

// stripJSONFences removes markdown code fences models like to wrap JSON in.
func stripJSONFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
