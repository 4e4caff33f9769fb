package response

import (
	"encoding/json"
	"net/http"

	"reviews-backend/internal/validation"
)

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Success bool                    `json:"success"`
	Errors  []validation.FieldError `json:"errors"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func Success(w http.ResponseWriter, data interface{}, message string) {
	JSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func Error(w http.ResponseWriter, code int, message string) {
	JSON(w, code, ErrorResponse{
		Success: false,
		Message: message,
	})
}

func ValidationFailed(w http.ResponseWriter, errs validation.Errors) {
	JSON(w, http.StatusBadRequest, ValidationErrorResponse{
		Success: false,
		Errors:  errs,
	})
}
