package api

import (
	"net/http"

	"github.com/rs/zerolog"
)

// installHandler starts the handshake, or completes it when the platform calls back with a code
func installHandler(installer Installer, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		query := r.URL.Query()

		if query.Get("code") == "" {
			result, err := installer.Start(ctx, query)
			if err != nil {
				status := statusFor(err)
				logger.Warn().Err(err).Int("status", status).Str("shop", query.Get("shop")).Msg("Install start rejected")
				http.Error(w, publicMessage(status, err), status)
				return
			}

			http.Redirect(w, r, result.RedirectURL, http.StatusFound)
			return
		}

		cred, err := installer.Callback(ctx, query)
		if err != nil {
			status := statusFor(err)
			logger.Warn().Err(err).Int("status", status).Str("shop", query.Get("shop")).Msg("Install callback rejected")
			http.Error(w, publicMessage(status, err), status)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"status": "installed",
			"shop":   cred.Shop,
			"scope":  cred.Scope,
		})
	}
}
