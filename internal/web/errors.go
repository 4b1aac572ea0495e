package web

// errors.go provides unified error response handling for the web layer.
//
// Every handler error goes through respondError, which logs the technical
// error with the request id and returns a user-facing message mapped by
// core.MapError, as JSON for API clients and plain text otherwise.

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/dexedit/internal/core"
	"github.com/JonMunkholm/dexedit/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string           `json:"error"`
	Message string           `json:"message"`
	Action  string           `json:"action,omitempty"`
	Code    string           `json:"code"`
	Rows    []RowErrorDetail `json:"rows,omitempty"`

	// Import is set when an import failed on some rows but applied others.
	Import *ImportResponse `json:"import,omitempty"`
}

// RowErrorDetail is one rejected CSV row in an import error response.
type RowErrorDetail struct {
	Line   int    `json:"line"`
	Key    string `json:"key"`
	Column string `json:"column"`
	Error  string `json:"error"`
}

var errBadRequest = errors.New("bad request")

// badRequest wraps a request decoding problem.
func badRequest(msg string) error {
	return &requestError{msg: msg}
}

type requestError struct{ msg string }

func (e *requestError) Error() string { return "bad request: " + e.msg }
func (e *requestError) Unwrap() error { return errBadRequest }

// statusFor picks the HTTP status for a handler error.
func statusFor(err error) int {
	var (
		ve *core.ValidationError
		ie *core.ImportError
	)
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errPanelNotFound), errors.Is(err, core.ErrPanelClosed),
		errors.Is(err, core.ErrUnknownTable):
		return http.StatusNotFound
	case errors.Is(err, errPanelLimit):
		return http.StatusTooManyRequests
	case errors.Is(err, errTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrReadOnly), errors.Is(err, core.ErrNoPendingEdit):
		return http.StatusConflict
	case errors.As(err, &ve), errors.As(err, &ie),
		errors.Is(err, core.ErrNotFound), errors.Is(err, core.ErrInvalidLevel),
		errors.Is(err, core.ErrSlotCapacity), errors.Is(err, core.ErrSlotIndex),
		errors.Is(err, core.ErrNotEditable):
		return http.StatusUnprocessableEntity
	case strings.HasPrefix(err.Error(), "invalid csv"), strings.HasPrefix(err.Error(), "empty file"),
		strings.HasPrefix(err.Error(), "missing key column"):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the technical error server-side and returns a
// user-friendly message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	s.respondErrorStatus(w, r, err, statusFor(err))
}

func (s *Server) respondErrorStatus(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if wantsJSON(r) {
		respondErrorJSON(w, err, userMsg, statusCode)
	} else {
		http.Error(w, core.FormatUserError(err)+" (request "+middleware.GetReqID(r.Context())+")", statusCode)
	}
}

// respondErrorJSON writes a JSON error response. Import failures carry their
// per-row details.
func respondErrorJSON(w http.ResponseWriter, err error, msg core.UserMessage, statusCode int) {
	resp := ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}
	var pe *partialImportError
	if errors.As(err, &pe) {
		resp.Import = &pe.summary
	}
	var ie *core.ImportError
	if errors.As(err, &ie) {
		for _, re := range ie.Rows {
			resp.Rows = append(resp.Rows, RowErrorDetail{
				Line:   re.Line,
				Key:    re.Key,
				Column: re.Column,
				Error:  re.Err.Error(),
			})
		}
	}
	writeJSONStatus(w, statusCode, resp)
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
