package respond

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorKind is the machine-readable error code carried in error bodies.
type ErrorKind string

const (
	KindAuthentication ErrorKind = "AuthenticationError"
	KindAuthorization  ErrorKind = "AuthorizationError"
	KindValidation     ErrorKind = "ValidationError"
	KindNotFound       ErrorKind = "NotFound"
	KindRateLimit      ErrorKind = "RateLimitError"
	KindServer         ErrorKind = "ServerError"
)

// ErrorBody is the uniform error response shape. Detail is populated
// only for server errors, and only outside production.
type ErrorBody struct {
	Code    ErrorKind `json:"code"`
	Message string    `json:"message"`
	Detail  string    `json:"error,omitempty"`
}

// JSON writes a success payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	write(w, status, payload)
}

// Error writes an error response using the uniform envelope.
func Error(w http.ResponseWriter, status int, kind ErrorKind, message string) {
	write(w, status, ErrorBody{Code: kind, Message: message})
}

// ServerError writes a 500 response. The raw error detail is echoed to
// the client only when exposeDetail is set (non-production).
func ServerError(w http.ResponseWriter, err error, exposeDetail bool) {
	body := ErrorBody{Code: KindServer, Message: "Internal server error"}
	if exposeDetail && err != nil {
		body.Detail = err.Error()
	}
	write(w, http.StatusInternalServerError, body)
}

func write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("respond: encode payload failed: %v", err)
	}
}
