package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gastosapp/gastos-backend/pkg/config"
	pkgerrors "github.com/gastosapp/gastos-backend/pkg/errors"
)

// RateResponse reports how many ARS one official USD sells for. On failure
// the rate pins to 1 so client-side conversions stay harmless.
type RateResponse struct {
	Rate  float64 `json:"rate"`
	Error string  `json:"error,omitempty"`
}

// Service fetches the official USD/ARS sell rate.
type Service interface {
	USDARS(ctx context.Context) (*RateResponse, error)
}

type service struct {
	endpoint string
	http     *http.Client
}

// ServiceParams bundles the dependencies required to build a rates service.
type ServiceParams struct {
	Cfg        config.RatesConfig
	HTTPClient *http.Client
}

// NewService constructs a rates service bound to the configured quote API.
func NewService(params ServiceParams) (Service, error) {
	if params.Cfg.USDARSEndpoint == "" {
		return nil, fmt.Errorf("rates endpoint is required")
	}
	client := params.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: params.Cfg.RequestTimeout}
	}
	return &service{endpoint: params.Cfg.USDARSEndpoint, http: client}, nil
}

// USDARS returns the official sell rate. Every failure mode comes back as a
// typed upstream error whose details carry the neutral {rate: 1} payload.
func (s *service) USDARS(ctx context.Context) (*RateResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build rates request")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, upstreamFailure("Error de red al consultar la cotización.")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamFailure("No se pudo obtener la cotización (respuesta no válida).")
	}

	var quote struct {
		Venta float64 `json:"venta"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return nil, upstreamFailure("Datos de cotización inválidos.")
	}
	if quote.Venta <= 0 {
		return nil, upstreamFailure("Datos de cotización inválidos.")
	}

	return &RateResponse{Rate: quote.Venta}, nil
}

func upstreamFailure(message string) error {
	return pkgerrors.New(pkgerrors.CodeUpstream, message).
		WithDetails(map[string]any{"rate": 1})
}
