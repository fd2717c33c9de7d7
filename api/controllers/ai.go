package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gastosapp/gastos-backend/api/middleware"
	"github.com/gastosapp/gastos-backend/api/responses"
	"github.com/gastosapp/gastos-backend/api/validators"
	"github.com/gastosapp/gastos-backend/internal/ai"
	pkgerrors "github.com/gastosapp/gastos-backend/pkg/errors"
	"github.com/gastosapp/gastos-backend/pkg/logger"
)

// maxTicketUploadBytes caps receipt images at 10 MB.
const maxTicketUploadBytes = 10 << 20

// ExtractTicket accepts a multipart receipt image under the "file" field and
// returns the structured extraction.
func ExtractTicket(svc ai.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxTicketUploadBytes)
		if err := r.ParseMultipartForm(maxTicketUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart payload"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "no file uploaded"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid file upload"))
			return
		}
		defer file.Close()

		image, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read upload"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		extraction, err := svc.ExtractTicket(r.Context(), userID, image, header.Header.Get("Content-Type"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, extraction)
	}
}

// ExecutePrompt runs a raw prompt through the user's resolved provider.
func ExecutePrompt(svc ai.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body ai.PromptRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		result, err := svc.ExecutePrompt(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Recommendations returns AI spending advice. The service degrades to
// human-readable hints instead of failing, so this handler rarely errors.
func Recommendations(svc ai.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		recs, err := svc.Recommend(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, recs)
	}
}

// ListAIModels proxies the provider's model catalog.
func ListAIModels(svc ai.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		models, err := svc.ListModels(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, models)
	}
}
