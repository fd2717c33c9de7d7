package controllers

import (
	"net/http"

	"github.com/gastosapp/gastos-backend/api/responses"
	"github.com/gastosapp/gastos-backend/internal/rates"
	pkgerrors "github.com/gastosapp/gastos-backend/pkg/errors"
	"github.com/gastosapp/gastos-backend/pkg/logger"
)

// USDARSRate proxies the official dollar sell rate. Upstream failures keep the
// historical flat body with rate 1 so clients can still render totals.
func USDARSRate(svc rates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rate, err := svc.USDARS(r.Context())
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeUpstream {
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "reason", typed.Message()), "rates.upstream_failed")
				}
				responses.WriteRaw(w, http.StatusBadGateway, rates.RateResponse{
					Rate:  1,
					Error: typed.Message(),
				})
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRaw(w, http.StatusOK, rate)
	}
}
