package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"ims-storefront-bridge/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// bearerAuth requires "Authorization: Bearer <token>"
func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// syncHandler runs a sync for the seller in the path and returns its report
func syncHandler(syncer Syncer, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerNumber := chi.URLParam(r, "sellerNumber")

		report, err := syncer.Sync(r.Context(), sellerNumber)
		if err != nil {
			status := statusFor(err)
			logger.Error().Err(err).Int("status", status).Str("sellerNumber", sellerNumber).Msg("Sync run failed")
			writeJSON(w, status, map[string]string{"error": publicMessage(status, err)})
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}

// latestRunHandler returns the last persisted report of a seller
func latestRunHandler(runs ports.SyncRunRepository, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerNumber := chi.URLParam(r, "sellerNumber")

		report, err := runs.LatestRun(r.Context(), sellerNumber)
		if err != nil {
			logger.Error().Err(err).Str("sellerNumber", sellerNumber).Msg("Failed to load sync history")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": http.StatusText(http.StatusInternalServerError)})
			return
		}
		if report == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no sync run recorded for seller"})
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}
