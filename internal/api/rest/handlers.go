package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/leadvault/contact-verify-backend/internal/service/verification"
)

// Handlers exposes the validation service over HTTP.
type Handlers struct {
	service  verification.Service
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandlers creates the HTTP handlers.
func NewHandlers(service verification.Service, logger *slog.Logger) *Handlers {
	return &Handlers{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

type validateEmailRequest struct {
	Email string `json:"email" validate:"required,max=320"`
}

type validatePhoneRequest struct {
	Phone   string `json:"phone" validate:"required,max=32"`
	Country string `json:"country" validate:"omitempty,len=2,alpha"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ValidateEmail handles POST /api/v1/validations/email.
func (h *Handlers) ValidateEmail(w http.ResponseWriter, r *http.Request) {
	var req validateEmailRequest
	if !h.decode(w, r, &req) {
		return
	}

	verdict := h.service.ValidateEmail(r.Context(), req.Email)
	writeJSON(w, http.StatusOK, verdict)
}

// ValidatePhone handles POST /api/v1/validations/phone.
func (h *Handlers) ValidatePhone(w http.ResponseWriter, r *http.Request) {
	var req validatePhoneRequest
	if !h.decode(w, r, &req) {
		return
	}

	verdict := h.service.ValidatePhone(r.Context(), req.Phone, req.Country)
	writeJSON(w, http.StatusOK, verdict)
}

// Health handles GET /healthz.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /readyz.
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body is not valid JSON")
		return false
	}

	if err := h.validate.Struct(dest); err != nil {
		h.logger.DebugContext(r.Context(), "request validation failed", slog.Any("error", err))
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}
