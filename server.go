package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go-aadhaar-verifier/document/aadhaar"
	"go-aadhaar-verifier/models"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const ErrorInternal = "error:internal"
const ERR_MARSHAL = "failed to marshal response message"
const ERR_INVALID_REQUEST = "invalid request"

const (
	healthPath          = "/api/health"
	requestIDHeader     = "X-Request-Id"
	serverWriteTimeout  = 15 * time.Second
	serverReadTimeout   = 15 * time.Second
	serverShutdownGrace = time.Second
)

type ServerConfig struct {
	Host           string `json:"host" mapstructure:"host"`
	Port           int    `json:"port" mapstructure:"port"`
	UseTls         bool   `json:"use_tls,omitempty" mapstructure:"use_tls"`
	TlsPrivKeyPath string `json:"tls_priv_key_path,omitempty" mapstructure:"tls_priv_key_path"`
	TlsCertPath    string `json:"tls_cert_path,omitempty" mapstructure:"tls_cert_path"`
}

type ServerState struct {
	verifier       DocumentVerifier
	schemas        *RequestSchemas
	rateLimiter    *RateLimiter
	metricsHandler http.Handler
}

type Server struct {
	server *http.Server
	config ServerConfig
}

func (s *Server) ListenAndServe() error {
	if s.config.UseTls {
		slog.Info("Starting server with TLS", "host", s.config.Host, "port", s.config.Port, "cert", s.config.TlsCertPath, "key", s.config.TlsPrivKeyPath)
		return s.server.ListenAndServeTLS(s.config.TlsCertPath, s.config.TlsPrivKeyPath)
	} else {
		slog.Info("Starting server without TLS", "host", s.config.Host, "port", s.config.Port)
		return s.server.ListenAndServe()
	}
}

func (s *Server) Stop() error {
	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownGrace)
	defer cancel()
	err := s.server.Shutdown(ctx)
	if err != nil {
		slog.Error("Error during server shutdown", "error", err)
	} else {
		slog.Info("Server shut down successfully")
	}
	return err
}

func NewServer(state *ServerState, config ServerConfig) (*Server, error) {
	slog.Info("Creating new server", "host", config.Host, "port", config.Port, "tls", config.UseTls)
	if state.verifier == nil {
		return nil, errors.New("server needs a document verifier")
	}
	if state.schemas == nil {
		schemas, err := LoadRequestSchemas()
		if err != nil {
			return nil, err
		}
		state.schemas = schemas
	}
	if state.metricsHandler == nil {
		state.metricsHandler = promhttp.Handler()
	}

	router := mux.NewRouter()

	router.HandleFunc(healthPath, func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("Health check request received")
		err := json.NewEncoder(w).Encode(map[string]bool{"ok": true})
		if err != nil {
			slog.Error("failed to write body to http response", "error", err)
		}
	})

	router.HandleFunc("/api/verify-document", func(w http.ResponseWriter, r *http.Request) {
		handleVerifyDocument(state, w, r)
	})
	router.HandleFunc("/api/verify-with-form", func(w http.ResponseWriter, r *http.Request) {
		handleVerifyWithForm(state, w, r)
	})
	router.HandleFunc("/api/validate-aadhaar", func(w http.ResponseWriter, r *http.Request) {
		handleValidateAadhaar(state, w, r)
	})
	router.Handle("/metrics", state.metricsHandler).Methods(http.MethodGet)

	slog.Debug("Registered all API routes")

	var handler http.Handler = router
	if state.rateLimiter != nil {
		handler = state.rateLimiter.Middleware(handler)
	}
	handler = withRequestID(handler)

	addr := fmt.Sprintf("%v:%v", config.Host, config.Port)
	srv := &http.Server{
		Handler:      handler,
		Addr:         addr,
		WriteTimeout: serverWriteTimeout,
		ReadTimeout:  serverReadTimeout,
	}

	slog.Info("Server created successfully", "address", addr)
	return &Server{
		server: srv,
		config: config,
	}, nil
}

func handleVerifyDocument(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	var request models.DocumentVerificationRequest
	if err := decodeRequest(r, state.schemas.VerifyDocument, &request); err != nil {
		respondWithRequestErr(w, err)
		return
	}

	result := state.verifier.VerifyDocument(r.Context(), request.Bundle())
	slog.Info("Document verification completed",
		"request_id", requestID(r),
		"is_valid", result.IsValid,
		"errors", len(result.ValidationErrors),
	)

	if err := writeJSON(w, http.StatusOK, result); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
	}
}

func handleVerifyWithForm(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	var request models.FormVerificationRequest
	if err := decodeRequest(r, state.schemas.VerifyWithForm, &request); err != nil {
		respondWithRequestErr(w, err)
		return
	}

	result := state.verifier.VerifyClaim(r.Context(), request.Claim(), request.Bundle())
	slog.Info("Form verification completed",
		"request_id", requestID(r),
		"is_verified", result.IsVerified,
		"confidence", result.Confidence,
	)

	if err := writeJSON(w, http.StatusOK, result); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
	}
}

func handleValidateAadhaar(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	var request models.IdentifierValidationRequest
	if err := decodeRequest(r, state.schemas.ValidateAadhaar, &request); err != nil {
		respondWithRequestErr(w, err)
		return
	}

	response := models.IdentifierValidationResponse{
		IsValid:       state.verifier.ValidateIdentifier(request.AadhaarNumber),
		AadhaarMasked: aadhaar.MaskIdentifier(request.AadhaarNumber),
		AadhaarLast4:  aadhaar.Last4(request.AadhaarNumber),
	}
	slog.Debug("Aadhaar number validated", "request_id", requestID(r), "is_valid", response.IsValid)

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
	}
}

func respondWithRequestErr(w http.ResponseWriter, err error) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		respondWithErr(w, http.StatusBadRequest, reqErr.Message, ERR_INVALID_REQUEST, reqErr.Err)
		return
	}
	respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_INVALID_REQUEST, err)
}

func respondWithErr(w http.ResponseWriter, code int, responseBody string, logMsg string, e error) {
	slog.Error(logMsg, "error", e, "status_code", code, "response_body", responseBody)
	w.WriteHeader(code)
	if _, err := w.Write([]byte(responseBody)); err != nil {
		slog.Error("failed to write body to http response", "error", err)
	}
}

// helpers ------------

type requestIDKey struct{}

// withRequestID tags every request and response with a fresh id.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

func closeRequestBody(r *http.Request) {
	if err := r.Body.Close(); err != nil {
		slog.Error("failed to close request body", "error", err)
	}

}

func requirePOST(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		slog.Debug("Non-POST request rejected", "method", r.Method, "path", r.URL.Path)
		respondWithErr(w, http.StatusMethodNotAllowed, "method not allowed", "invalid method", nil)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	slog.Debug("Writing JSON response", "status_code", status)
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to marshal JSON payload", "error", err)
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(payload)
	if err != nil {
		slog.Error("failed to write body to http response", "error", err)
	} else {
		slog.Debug("JSON response written successfully", "status_code", status, "payload_size", len(payload))
	}
	return nil
}
