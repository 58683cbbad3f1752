package routes

import (
	"net/http"

	"fieldkpi/handlers"
	"fieldkpi/middlewares"
)

func SetupRoutes(
	kpiHandler *handlers.KPIHandler,
	trainingHandler *handlers.TrainingHandler,
	auditHandler *handlers.AuditHandler,
	notificationHandler *handlers.NotificationHandler,
	jwtSecret string,
) *http.ServeMux {
	mux := http.NewServeMux()

	// Apply JWT middleware to all routes
	jwtMiddleware := middlewares.JWTMiddleware(jwtSecret)
	protected := func(h http.HandlerFunc) http.Handler {
		return jwtMiddleware(http.HandlerFunc(h))
	}

	// KPI submission and automation
	mux.Handle("POST /api/kpi", protected(kpiHandler.SubmitKPI))
	mux.Handle("GET /api/kpi", protected(kpiHandler.GetAllKPIs))
	mux.Handle("GET /api/kpi/{id}", protected(kpiHandler.GetKPIByID))
	mux.Handle("POST /api/kpi/{id}/reprocess", protected(kpiHandler.Reprocess))
	mux.Handle("DELETE /api/kpi/{id}", protected(kpiHandler.DeleteKPI))
	mux.Handle("GET /api/kpi/automations/pending", protected(kpiHandler.GetPendingAutomations))
	mux.Handle("GET /api/kpi/analytics/performance", protected(kpiHandler.GetPerformanceStats))

	// Training assignments
	mux.Handle("POST /api/training", protected(trainingHandler.AssignManual))
	mux.Handle("POST /api/training/{id}/start", protected(trainingHandler.Start))
	mux.Handle("POST /api/training/{id}/complete", protected(trainingHandler.Complete))
	mux.Handle("GET /api/training/subject/{subjectId}", protected(trainingHandler.ListBySubject))
	mux.Handle("GET /api/training/overdue", protected(trainingHandler.ListOverdue))

	// Audit schedules
	mux.Handle("POST /api/audits/{id}/start", protected(auditHandler.Start))
	mux.Handle("POST /api/audits/{id}/complete", protected(auditHandler.Complete))
	mux.Handle("GET /api/audits/subject/{subjectId}", protected(auditHandler.ListBySubject))
	mux.Handle("GET /api/audits/overdue", protected(auditHandler.ListOverdue))

	// Notification retry sweep
	mux.Handle("POST /api/notifications/retry", protected(notificationHandler.RetryFailed))
	mux.Handle("GET /api/notifications/failed", protected(notificationHandler.ListFailed))

	return mux
}
