package web

// errors.go renders every handler error the same way: the technical error
// is logged with the request id, and the client gets the mapped user
// message as JSON for API calls or as an HTML fragment for pages.

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JonMunkholm/proset/internal/core"
	"github.com/JonMunkholm/proset/internal/logging"
	"github.com/JonMunkholm/proset/internal/web/templates"
)

// ErrorResponse is the JSON body of an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

func errorResponse(msg core.UserMessage) ErrorResponse {
	return ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}
}

// respondError maps err to a user message and status and writes it in the
// format the client asked for.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	msg := core.MapError(err)
	status := msg.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	logger := logging.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request error",
			"path", r.URL.Path,
			"method", r.Method,
			"status", status,
			"error", err.Error(),
			"code", msg.Code,
		)
	} else {
		logger.Warn("request rejected",
			"path", r.URL.Path,
			"method", r.Method,
			"status", status,
			"error", err.Error(),
			"code", msg.Code,
		)
	}

	if wantsJSON(r) {
		respondErrorJSON(w, msg, status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		logger.Error("render error alert", "error", err)
	}
}

func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse(msg))
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the client should get JSON. API routes always
// do; pages only when asked.
func wantsJSON(r *http.Request) bool {
	if isHTMX(r) {
		return false
	}
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
