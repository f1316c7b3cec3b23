package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nischaysood/creator-connect/internal/application"
	"github.com/nischaysood/creator-connect/internal/contracts"
	"github.com/nischaysood/creator-connect/internal/domain"
)

type Handler struct{ service *application.Service }

func NewHandler(service *application.Service) *Handler { return &Handler{service: service} }

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	var req contracts.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context()))
		return
	}
	row, err := h.service.VerifyContent(r.Context(), actor, application.VerifyInput{
		URL:                  req.URL,
		CampaignID:           req.CampaignID,
		CreatorAddress:       req.CreatorAddress,
		CampaignRequirements: req.CampaignRequirements,
	})
	if err != nil {
		status, code := mapDomainError(err)
		logHTTPOperationError(r.Context(), "verify", status, code, err.Error(), err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "", toVerificationResponse(row))
}

func (h *Handler) getVerification(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	row, err := h.service.GetVerification(r.Context(), actor, pathParam(r, "verificationID"))
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "", toVerificationResponse(row))
}

func (h *Handler) listCampaignVerifications(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	rows, err := h.service.ListCampaignVerifications(r.Context(), actor, pathParam(r, "campaignID"))
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	items := make([]contracts.VerificationResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, toVerificationResponse(row))
	}
	writeSuccess(w, http.StatusOK, "", contracts.ListVerificationsResponse{Verifications: items})
}

func toVerificationResponse(row domain.Verification) contracts.VerificationResponse {
	resp := contracts.VerificationResponse{
		VerificationID: row.VerificationID,
		CampaignID:     row.CampaignID,
		CreatorAddress: row.CreatorAddress,
		URL:            row.URL,
		Verified:       row.Verified,
		Score:          row.Score,
		Reason:         row.Reason,
		Platform:       string(row.Platform),
		ContentType:    string(row.ContentType),
		ContentID:      row.ContentID,
		TransactionID:  row.TransactionID,
		PayoutError:    row.PayoutError,
		CreatedAt:      row.CreatedAt.UTC().Format(time.RFC3339),
	}
	if row.AIAnalysis != nil {
		resp.AIAnalysis = &contracts.AIAnalysisResponse{
			ContentAppropriate:    row.AIAnalysis.ContentAppropriate,
			BrandSafe:             row.AIAnalysis.BrandSafe,
			SponsorshipDisclosure: row.AIAnalysis.SponsorshipDisclosure,
			Description:           row.AIAnalysis.Description,
			MatchedRequirements:   row.AIAnalysis.MatchedRequirements,
			UnmetRequirements:     row.AIAnalysis.UnmetRequirements,
			RequirementMatchScore: row.AIAnalysis.RequirementMatchScore,
			Warnings:              row.AIAnalysis.Warnings,
			Degraded:              row.AIAnalysis.Degraded,
		}
	}
	return resp
}
