package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ternarybob/atlasdash/internal/gateway"
	"github.com/ternarybob/atlasdash/internal/interfaces"
	"github.com/ternarybob/atlasdash/internal/services/auth"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a standard success JSON response.
func WriteSuccess(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": message,
	})
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteServiceError maps a service-layer error onto an HTTP response.
// Validation failures become 400 with per-field details, backend status
// errors keep their status with a user-facing message, transport failures
// become 502 or 504.
func WriteServiceError(w http.ResponseWriter, err error) error {
	var verrs auth.ValidationErrors
	if errors.As(err, &verrs) {
		return WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"status": "error",
			"error":  "Validation failed",
			"fields": verrs,
		})
	}

	if errors.Is(err, interfaces.ErrStateMismatch) {
		return WriteError(w, http.StatusBadRequest, "Sign-in verification failed. Please try again.")
	}

	if statusErr, ok := gateway.AsStatusError(err); ok {
		return WriteError(w, statusErr.Status, statusErr.UserMessage())
	}

	if transportErr, ok := gateway.AsTransportError(err); ok {
		if transportErr.Timeout {
			return WriteError(w, http.StatusGatewayTimeout, gateway.UserMessage(err))
		}
		return WriteError(w, http.StatusBadGateway, gateway.UserMessage(err))
	}

	return WriteError(w, http.StatusInternalServerError, err.Error())
}
