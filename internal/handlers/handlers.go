package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"reviews-backend/internal/validation"
	"reviews-backend/utils/response"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// validationFailed writes the field errors if err is a validation failure.
func validationFailed(w http.ResponseWriter, err error) bool {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ValidationFailed(w, verrs)
		return true
	}
	return false
}

// serverError logs the real cause and returns the generic envelope. Internal
// detail never reaches the caller.
func serverError(w http.ResponseWriter, err error) {
	logger.Error().Err(err).Msg("request failed")
	response.Error(w, http.StatusInternalServerError, "Server error")
}
