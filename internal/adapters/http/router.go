package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterConfig carries the few HTTP-surface knobs the router needs.
type RouterConfig struct {
	JWTSecret string
}

func NewRouter(handler *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeSuccess(w, http.StatusOK, "", map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		writeSuccess(w, http.StatusOK, "", map[string]string{"status": "ready"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(cfg.JWTSecret))
			r.Post("/verifications", handler.verify)
			r.Get("/verifications/{verificationID}", handler.getVerification)
			r.Get("/campaigns/{campaignID}/verifications", handler.listCampaignVerifications)
		})
	})

	return r
}

func pathParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
