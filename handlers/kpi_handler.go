package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	middleware "fieldkpi/middlewares"
	"fieldkpi/models"
	repository "fieldkpi/repositories"
	service "fieldkpi/services"
	"fieldkpi/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// respondServiceError maps the service error taxonomy onto HTTP responses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrDuplicatePeriod):
		utils.HandleErrorResponse(w, models.CodeDuplicatePeriod, err.Error(), http.StatusConflict)
	case errors.Is(err, repository.ErrNotFound):
		utils.HandleErrorResponse(w, models.CodeNotFound, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidRange):
		utils.HandleErrorResponse(w, models.CodeInvalidRange, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrInvalidPeriod):
		utils.HandleErrorResponse(w, models.CodeInvalidInput, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrInvalidTransition):
		utils.HandleErrorResponse(w, models.CodeInvalidInput, err.Error(), http.StatusConflict)
	default:
		utils.HandleErrorResponse(w, models.CodeInternal, err.Error(), http.StatusInternalServerError)
	}
}

type KPIHandler struct {
	service service.KPIService
}

func NewKPIHandler(service service.KPIService) *KPIHandler {
	return &KPIHandler{
		service: service,
	}
}

func (h *KPIHandler) SubmitKPI(w http.ResponseWriter, r *http.Request) {
	var req service.SubmitKPIRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	username := middleware.GetUsernameFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	record, err := h.service.SubmitKPI(ctx, req, username)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.HandleDataResponse(w, "KPI submitted successfully", record, http.StatusCreated)
}

func (h *KPIHandler) GetKPIByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid KPI record ID format", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	record, err := h.service.GetByID(ctx, objectID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.HandleDataResponse(w, "KPI record retrieved successfully", record, http.StatusOK)
}

func (h *KPIHandler) GetAllKPIs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	records, err := h.service.GetAll(ctx)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.HandleDataResponse(w, "KPI records retrieved successfully", records, http.StatusOK)
}

func (h *KPIHandler) Reprocess(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid KPI record ID format", http.StatusBadRequest)
		return
	}

	username := middleware.GetUsernameFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	record, err := h.service.Reprocess(ctx, objectID, username)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.HandleDataResponse(w, "KPI record reprocessed", record, http.StatusOK)
}

func (h *KPIHandler) DeleteKPI(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid KPI record ID format", http.StatusBadRequest)
		return
	}

	username := middleware.GetUsernameFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.service.SoftDeactivate(ctx, objectID, username); err != nil {
		respondServiceError(w, err)
		return
	}

	utils.HandleMessageResponse(w, "KPI record deactivated successfully", http.StatusOK)
}

func (h *KPIHandler) GetPendingAutomations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	records, err := h.service.GetPendingAutomations(ctx)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.HandleDataResponse(w, "Pending automations retrieved successfully", records, http.StatusOK)
}

func (h *KPIHandler) GetPerformanceStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	stats, err := h.service.GetPerformanceStats(ctx)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.HandleDataResponse(w, "Performance statistics retrieved successfully", stats, http.StatusOK)
}
