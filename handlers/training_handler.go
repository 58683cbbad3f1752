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

type TrainingHandler struct {
	service service.TrainingService
}

func NewTrainingHandler(service service.TrainingService) *TrainingHandler {
	return &TrainingHandler{
		service: service,
	}
}

func (h *TrainingHandler) AssignManual(w http.ResponseWriter, r *http.Request) {
	var req service.ManualAssignmentRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	username := middleware.GetUsernameFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	assignment, err := h.service.AssignManual(ctx, req, username)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.HandleDataResponse(w, "Training assigned successfully", assignment, http.StatusCreated)
}

func (h *TrainingHandler) Start(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid assignment ID format", http.StatusBadRequest)
		return
	}

	username := middleware.GetUsernameFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	assignment, err := h.service.Start(ctx, objectID, username)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.HandleDataResponse(w, "Training started", assignment, http.StatusOK)
}

func (h *TrainingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid assignment ID format", http.StatusBadRequest)
		return
	}

	var req service.CompleteTrainingRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	username := middleware.GetUsernameFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	assignment, err := h.service.Complete(ctx, objectID, req, username)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.HandleDataResponse(w, "Training completed", assignment, http.StatusOK)
}

func (h *TrainingHandler) ListBySubject(w http.ResponseWriter, r *http.Request) {
	subjectID := r.PathValue("subjectId")
	if subjectID == "" {
		utils.HandleMessageResponse(w, "Subject ID required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	assignments, err := h.service.ListBySubject(ctx, subjectID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.HandleDataResponse(w, "Training assignments retrieved successfully", assignments, http.StatusOK)
}

func (h *TrainingHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	assignments, err := h.service.ListOverdue(ctx)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.HandleDataResponse(w, "Overdue training assignments retrieved successfully", assignments, http.StatusOK)
}
