package handler

import (
	"log/slog"
	"net/http"

	"github.com/cardiopredict/cardiopredict/internal/handler/dto"
	"github.com/cardiopredict/cardiopredict/internal/service"
)

// PredictionHandler handles HTTP requests for prediction operations.
// Every route runs behind the auth middleware; the owner always comes from
// the verified token, never from the request.
type PredictionHandler struct {
	svc    *service.PredictionService
	logger *slog.Logger
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(svc *service.PredictionService, logger *slog.Logger) *PredictionHandler {
	return &PredictionHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /prediction/.
func (h *PredictionHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == nil {
		return
	}

	predictions, err := h.svc.List(r.Context(), caller)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToPredictionListResponse(predictions))
}

// Get handles GET /prediction/{id}.
func (h *PredictionHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == nil {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.svc.Get(r.Context(), caller, id)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToPredictionResponse(p))
}

// Create handles POST /prediction/.
func (h *PredictionHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == nil {
		return
	}

	var req dto.PredictionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.svc.Create(r.Context(), caller, service.PredictionInput{
		Age:             req.Age,
		CigsPerDay:      req.CigsPerDay,
		PrevalentStroke: req.PrevalentStroke,
		SysBP:           req.SysBP,
		DiaBP:           req.DiaBP,
		HeartRate:       req.HeartRate,
		Glucose:         req.Glucose,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("prediction_created",
		"prediction_id", p.ID,
		"user_id", caller.UserID,
	)

	writeJSON(w, http.StatusCreated, dto.ToPredictionResponse(p))
}

// Delete handles DELETE /prediction/{id}.
func (h *PredictionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == nil {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), caller, id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("prediction_deleted",
		"prediction_id", id,
		"user_id", caller.UserID,
	)

	w.WriteHeader(http.StatusNoContent)
}
