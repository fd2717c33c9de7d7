package pushtokens

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gastosapp/gastos-backend/pkg/config"
	"github.com/gastosapp/gastos-backend/pkg/db/models"
	pkgerrors "github.com/gastosapp/gastos-backend/pkg/errors"
	"github.com/google/uuid"
)

var expoTokenPrefixes = []string{"ExponentPushToken[", "ExpoPushToken["}

// RegisterRequest registers a device token for the caller.
type RegisterRequest struct {
	Token    string  `json:"token" validate:"required"`
	Platform *string `json:"platform" validate:"omitempty,max=40"`
}

// TestSendResponse reports the outcome of a test notification.
type TestSendResponse struct {
	OK     bool            `json:"ok"`
	Tokens int             `json:"tokens"`
	Expo   json.RawMessage `json:"expo,omitempty"`
}

// Service registers device tokens and sends test notifications through
// Expo's push API.
type Service interface {
	Register(ctx context.Context, userID uuid.UUID, req RegisterRequest) error
	SendTest(ctx context.Context, userID uuid.UUID) (*TestSendResponse, error)
}

type service struct {
	repo tokenRepository
	cfg  config.PushConfig
	http *http.Client
}

type tokenRepository interface {
	Upsert(ctx context.Context, token *models.PushToken) error
	ListRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.PushToken, error)
}

// ServiceParams bundles the dependencies required to build the service.
type ServiceParams struct {
	Repo       tokenRepository
	Cfg        config.PushConfig
	HTTPClient *http.Client
}

// NewService constructs a push token service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("push token repository is required")
	}
	if params.Cfg.ExpoEndpoint == "" {
		return nil, fmt.Errorf("expo endpoint is required")
	}
	client := params.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: params.Cfg.RequestTimeout}
	}
	return &service{repo: params.Repo, cfg: params.Cfg, http: client}, nil
}

// Register stores the device token, claiming it for the caller if another
// account registered it before.
func (s *service) Register(ctx context.Context, userID uuid.UUID, req RegisterRequest) error {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "token is required")
	}
	if !isExpoPushToken(token) {
		return pkgerrors.New(pkgerrors.CodeValidation, "Invalid Expo push token")
	}

	var platform *string
	if req.Platform != nil {
		trimmed := strings.TrimSpace(*req.Platform)
		if trimmed != "" {
			platform = &trimmed
		}
	}

	record := &models.PushToken{
		Token:    token,
		UserID:   userID,
		Platform: platform,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save push token")
	}
	return nil
}

// SendTest pushes a canned notification to the caller's freshest devices.
func (s *service) SendTest(ctx context.Context, userID uuid.UUID) (*TestSendResponse, error) {
	rows, err := s.repo.ListRecentByUser(ctx, userID, s.cfg.DispatchLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list push tokens")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "No push tokens registered")
	}

	messages := make([]expoMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, expoMessage{
			To:    row.Token,
			Sound: "default",
			Title: "Control de Gastos",
			Body:  "Notificación de prueba ✅",
		})
	}

	result, err := s.dispatch(ctx, messages)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "no se pudo contactar el servicio de notificaciones")
	}

	return &TestSendResponse{OK: true, Tokens: len(rows), Expo: result}, nil
}

type expoMessage struct {
	To    string `json:"to"`
	Sound string `json:"sound"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *service) dispatch(ctx context.Context, messages []expoMessage) (json.RawMessage, error) {
	body, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("encoding push messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.ExpoEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling expo: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading expo response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("expo: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}

func isExpoPushToken(token string) bool {
	for _, prefix := range expoTokenPrefixes {
		if strings.HasPrefix(token, prefix) {
			return true
		}
	}
	return false
}
