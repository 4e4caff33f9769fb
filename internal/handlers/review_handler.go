package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"reviews-backend/internal/dto"
	"reviews-backend/internal/middleware"
	"reviews-backend/internal/services"
	"reviews-backend/internal/validation"
	"reviews-backend/utils/response"
)

type ReviewHandler struct {
	service *services.ReviewService
}

func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

const (
	defaultPage    = 1
	defaultPerPage = 10
)

// queryInt parses an optional integer query parameter, recording a field
// error when the value is present but not an integer.
func queryInt(v *validation.Collector, query url.Values, name, message string, fallback int) int {
	raw := query.Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		v.Add(name, message)
		return fallback
	}
	return n
}

func reviewID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		response.ValidationFailed(w, validation.Errors{
			{Field: "id", Message: "Invalid review ID"},
		})
		return uuid.Nil, false
	}
	return id, true
}

func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	query := r.URL.Query()
	var v validation.Collector
	page := queryInt(&v, query, "page", "Page must be a positive integer", defaultPage)
	perPage := queryInt(&v, query, "perPage", "PerPage must be between 1 and 100", defaultPerPage)
	minRating := queryInt(&v, query, "minRating", "MinRating must be between 1 and 5", 0)
	if err := v.Err(); err != nil {
		validationFailed(w, err)
		return
	}

	filter := dto.ListReviewsFilter{
		City:      query.Get("city"),
		MinRating: minRating,
		Category:  query.Get("category"),
	}

	reviews, pagination, err := h.service.List(r.Context(), filter, page, perPage)
	if err != nil {
		if validationFailed(w, err) {
			return
		}
		serverError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, dto.ListReviewsResponse{
		Success:    true,
		Data:       reviews,
		Pagination: pagination,
	})
}

func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id, ok := reviewID(w, r)
	if !ok {
		return
	}

	review, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrReviewNotFound) {
			response.Error(w, http.StatusNotFound, "Review not found")
			return
		}
		serverError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SuccessResponse{
		Success: true,
		Data:    review,
	})
}

func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		response.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req dto.CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	review, err := h.service.Create(r.Context(), user, &req)
	if err != nil {
		if validationFailed(w, err) {
			return
		}
		serverError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SuccessResponse{
		Success: true,
		Data:    review,
	})
}

func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
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

	var patch dto.UpdateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	review, err := h.service.Update(r.Context(), user, id, &patch)
	if err != nil {
		if validationFailed(w, err) {
			return
		}
		switch {
		case errors.Is(err, services.ErrReviewNotFound):
			response.Error(w, http.StatusNotFound, "Review not found")
		case errors.Is(err, services.ErrForbidden):
			response.Error(w, http.StatusForbidden, "Not authorized to update this review")
		default:
			serverError(w, err)
		}
		return
	}

	response.JSON(w, http.StatusOK, response.SuccessResponse{
		Success: true,
		Data:    review,
		Message: "Review updated successfully",
	})
}

func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.Delete(r.Context(), user, id); err != nil {
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

// GetRestaurant aggregates every review for one business name.
func (h *ReviewHandler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	name := r.PathValue("name")
	if name == "" {
		response.Error(w, http.StatusBadRequest, "'name' not present in path")
		return
	}

	summary, err := h.service.AggregateByBusiness(r.Context(), name)
	if err != nil {
		if errors.Is(err, services.ErrReviewNotFound) {
			response.Error(w, http.StatusNotFound, "Restaurant not found")
			return
		}
		serverError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SuccessResponse{
		Success: true,
		Data:    summary,
	})
}
