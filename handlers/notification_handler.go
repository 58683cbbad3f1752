package handlers

import (
	"context"
	"net/http"
	"time"

	"fieldkpi/models"
	repository "fieldkpi/repositories"
	service "fieldkpi/services"
	"fieldkpi/utils"
)

type NotificationHandler struct {
	service service.NotificationService
}

func NewNotificationHandler(service service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		service: service,
	}
}

func (h *NotificationHandler) RetryFailed(w http.ResponseWriter, r *http.Request) {
	// Optional narrowing filter; an empty body retries everything eligible.
	filter := repository.RetryFilter{
		TemplateType: models.TemplateType(r.URL.Query().Get("template_type")),
		SubjectID:    r.URL.Query().Get("subject_id"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	summary, err := h.service.RetryFailed(ctx, filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.HandleDataResponse(w, "Retry sweep completed", summary, http.StatusOK)
}

func (h *NotificationHandler) ListFailed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	entries, err := h.service.ListFailed(ctx)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.HandleDataResponse(w, "Failed notifications retrieved successfully", entries, http.StatusOK)
}
