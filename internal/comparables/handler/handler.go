package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"taxappeal/internal/comparables/service"
	"taxappeal/internal/evidence/models"
	"taxappeal/pkg/domain"
	"taxappeal/pkg/platform/httputil"
	"taxappeal/pkg/requestcontext"
)

// Service defines the comparables operations exposed over HTTP.
type Service interface {
	Subject(ctx context.Context, pin domain.ParcelID) (*models.SubjectProperty, error)
	Comparables(ctx context.Context, pin domain.ParcelID, opts service.Options) (*models.SubjectProperty, []models.MergedComparable, error)
	DeriveManual(subject *models.SubjectProperty, candidate models.ComparableCandidate) models.MergedComparable
	Quota() models.QuotaStatus
}

// Handler wires property and comparable endpoints to the engine.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a comparables handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/properties/{pin}", h.HandleGetProperty)
	r.Post("/properties/{pin}/comparables", h.HandleFindComparables)
	r.Post("/properties/{pin}/comparables/manual", h.HandleManualComparable)
	r.Get("/enrichment/quota", h.HandleQuota)
}

// HandleGetProperty handles GET /properties/{pin}.
func (h *Handler) HandleGetProperty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	pin, err := domain.ParseParcelID(chi.URLParam(r, "pin"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	subject, err := h.service.Subject(ctx, pin)
	if err != nil {
		h.logger.WarnContext(ctx, "subject lookup failed",
			"request_id", requestID,
			"pin", pin.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, subject)
}

// HandleFindComparables handles POST /properties/{pin}/comparables.
func (h *Handler) HandleFindComparables(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	pin, err := domain.ParseParcelID(chi.URLParam(r, "pin"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[ComparablesRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	subject, comps, err := h.service.Comparables(ctx, pin, req.Options())
	if err != nil {
		h.logger.ErrorContext(ctx, "comparable discovery failed",
			"request_id", requestID,
			"pin", pin.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "comparables returned",
		"request_id", requestID,
		"pin", pin.String(),
		"count", len(comps),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, NewComparablesResponse(subject, req.Options().Kind, comps))
}

// HandleManualComparable handles POST /properties/{pin}/comparables/manual.
func (h *Handler) HandleManualComparable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	pin, err := domain.ParseParcelID(chi.URLParam(r, "pin"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[ManualComparableRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	subject, err := h.service.Subject(ctx, pin)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.service.DeriveManual(subject, req.Candidate()))
}

// HandleQuota handles GET /enrichment/quota.
func (h *Handler) HandleQuota(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.Quota())
}
