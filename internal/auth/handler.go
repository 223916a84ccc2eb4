package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"

	"numgate/internal/observability"
)

const maxJSONBodyBytes = 1 << 20

type Handler struct {
	service *Service
	logger  *observability.Logger
	metrics *observability.Metrics
}

func NewHandler(service *Service, logger *observability.Logger, metrics *observability.Metrics) *Handler {
	return &Handler{service: service, logger: logger, metrics: metrics}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerResponse struct {
	Message string `json:"message"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	if err := ValidateCredentials(body.Username, body.Password); err != nil {
		h.metrics.ObserveRegistration("invalid")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Register(r.Context(), body.Username, body.Password); err != nil {
		switch {
		case errors.Is(err, ErrAlreadyExists):
			h.metrics.ObserveRegistration("conflict")
			writeError(w, http.StatusBadRequest, "username already exists")
		case errors.Is(err, ErrInvalidUsername):
			h.metrics.ObserveRegistration("invalid")
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.metrics.ObserveRegistration("error")
			h.logger.Error("register_failed", map[string]any{"error": err.Error()})
			sentry.CaptureException(err)
			writeError(w, http.StatusInternalServerError, "failed to register user")
		}
		return
	}

	h.metrics.ObserveRegistration("created")
	h.logger.Info("user_registered", map[string]any{"username": body.Username})
	writeJSON(w, http.StatusOK, registerResponse{Message: "User registered successfully"})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	token, err := h.service.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.metrics.ObserveLogin("invalid_credentials")
			h.logger.Info("login_failed", map[string]any{"username": body.Username})
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		h.metrics.ObserveLogin("error")
		h.logger.Error("login_error", map[string]any{"error": err.Error()})
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	h.metrics.ObserveLogin("success")
	writeJSON(w, http.StatusOK, token)
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var body credentialsRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return credentialsRequest{}, false
	}

	return body, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
