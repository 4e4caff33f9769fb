package handlers

import (
	"errors"
	"net/http"

	"reviews-backend/internal/middleware"
	"reviews-backend/internal/services"
	"reviews-backend/internal/validation"
	"reviews-backend/utils/response"
)

type DashboardHandler struct {
	service *services.DashboardService
}

func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

const defaultDashboardLimit = 5

func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		response.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	query := r.URL.Query()
	var v validation.Collector
	page := queryInt(&v, query, "page", "Page must be a positive integer", defaultPage)
	limit := queryInt(&v, query, "limit", "Limit must be between 1 and 100", defaultDashboardLimit)
	if err := v.Err(); err != nil {
		validationFailed(w, err)
		return
	}

	dashboard, err := h.service.Stats(r.Context(), user, page, limit)
	if err != nil {
		if validationFailed(w, err) {
			return
		}
		serverError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SuccessResponse{
		Success: true,
		Data:    dashboard,
	})
}

func (h *DashboardHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		response.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, ok := reviewID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteOwnReview(r.Context(), user, id); err != nil {
		switch {
		case errors.Is(err, services.ErrReviewNotFound):
			response.Error(w, http.StatusNotFound, "Review not found")
		case errors.Is(err, services.ErrForbidden):
			response.Error(w, http.StatusForbidden, "Not authorized to delete this review")
		default:
			serverError(w, err)
		}
		return
	}

	response.JSON(w, http.StatusOK, response.SuccessResponse{
		Success: true,
		Message: "Review deleted successfully",
	})
}

func (h *DashboardHandler) AdminStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		response.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	stats, err := h.service.AdminStats(r.Context(), user)
	if err != nil {
		if errors.Is(err, services.ErrAdminRequired) {
			response.Error(w, http.StatusForbidden, "Admin access required")
			return
		}
		serverError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SuccessResponse{
		Success: true,
		Data:    stats,
	})
}
