package handlers

import (
	"context"
	"net/http"
	"time"

	middleware "fieldkpi/middlewares"
	service "fieldkpi/services"
	"fieldkpi/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuditHandler struct {
	service service.AuditService
}

func NewAuditHandler(service service.AuditService) *AuditHandler {
	return &AuditHandler{
		service: service,
	}
}

func (h *AuditHandler) Start(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid schedule ID format", http.StatusBadRequest)
		return
	}

	username := middleware.GetUsernameFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	schedule, err := h.service.Start(ctx, objectID, username)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.HandleDataResponse(w, "Audit started", schedule, http.StatusOK)
}

func (h *AuditHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid schedule ID format", http.StatusBadRequest)
		return
	}

	var req service.CompleteAuditRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	username := middleware.GetUsernameFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	schedule, err := h.service.Complete(ctx, objectID, req, username)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.HandleDataResponse(w, "Audit completed", schedule, http.StatusOK)
}

func (h *AuditHandler) ListBySubject(w http.ResponseWriter, r *http.Request) {
	subjectID := r.PathValue("subjectId")
	if subjectID == "" {
		utils.HandleMessageResponse(w, "Subject ID required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	schedules, err := h.service.ListBySubject(ctx, subjectID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.HandleDataResponse(w, "Audit schedules retrieved successfully", schedules, http.StatusOK)
}

func (h *AuditHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	schedules, err := h.service.ListOverdue(ctx)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.HandleDataResponse(w, "Overdue audit schedules retrieved successfully", schedules, http.StatusOK)
}
