package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bookingauth/internal/domain"
	"bookingauth/internal/dto"
	"bookingauth/internal/netutil"
	"bookingauth/internal/observability/middleware"
	"bookingauth/internal/service"
	"bookingauth/internal/service/impl"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 1 << 20

type Options struct {
	TrustProxy     bool
	AllowedOrigins []string
	RequestTimeout time.Duration
}

type handlers struct {
	auth   service.AuthService
	tokens service.TokenService
	opts   Options
}

func NewRouter(auth service.AuthService, tokens service.TokenService, opts Options) *chi.Mux {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	h := &handlers{auth: auth, tokens: tokens, opts: opts}

	r := chi.NewRouter()

	// --- Middlewares ---
	r.Use(chimw.Recoverer)
	r.Use(middleware.WithRequestAndTrace)
	r.Use(middleware.WithMetrics)
	r.Use(chimw.Timeout(opts.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.HeaderRequestID, middleware.HeaderTraceID},
		ExposedHeaders:   []string{middleware.HeaderRequestID, middleware.HeaderTraceID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/login", h.login)
		r.Post("/register", h.register)
		r.Get("/verify", h.verifyEmail)
		r.Post("/verify", h.verifyEmail)
		r.Post("/refresh", h.refresh)
		r.Post("/logout", h.logout)
	})

	r.Route("/v1/account", func(r chi.Router) {
		r.Use(h.requireAccess)
		r.Put("/two-factor", h.setTwoFactor)
	})

	return r
}

// LoginStatus maps a login outcome to the HTTP status it is served with.
func LoginStatus(o domain.LoginOutcome) int {
	if o.Success() {
		return http.StatusOK
	}
	switch o {
	case domain.OutcomeInvalidFields:
		return http.StatusBadRequest
	case domain.OutcomeAccountNotFound, domain.OutcomeInvalidCredentials,
		domain.OutcomeInvalidCode, domain.OutcomeCodeExpired:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.NewLoginResponse(domain.OutcomeInvalidFields))
		return
	}
	res := h.auth.Login(r.Context(), req, netutil.ClientIP(r, h.opts.TrustProxy), r.UserAgent())
	writeJSON(w, LoginStatus(res.Outcome), res)
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, domain.OutcomeInvalidFields.Message())
		return
	}
	res, err := h.auth.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, impl.ErrInvalidFields):
			writeError(w, http.StatusBadRequest, domain.OutcomeInvalidFields.Message())
		case errors.Is(err, domain.ErrEmailInUse):
			writeError(w, http.StatusConflict, "Email already in use!")
		default:
			h.internalError(w, r, "register", err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *handlers) verifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if r.Method == http.MethodPost {
		var req dto.VerifyEmailRequest
		if err := decodeJSON(w, r, &req); err != nil || dto.Validate(req) != nil {
			writeError(w, http.StatusBadRequest, "Missing token!")
			return
		}
		token = req.Token
	}
	if token == "" {
		writeError(w, http.StatusBadRequest, "Missing token!")
		return
	}

	err := h.auth.VerifyEmail(r.Context(), token)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Email verified!"})
	case errors.Is(err, domain.ErrTokenNotFound):
		writeError(w, http.StatusBadRequest, "Token does not exist!")
	case errors.Is(err, domain.ErrTokenExpired):
		writeError(w, http.StatusGone, "Token has expired!")
	case errors.Is(err, domain.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "Email does not exist!")
	default:
		h.internalError(w, r, "verify email", err)
	}
}

func (h *handlers) refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil || dto.Validate(req) != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	res, err := h.tokens.Refresh(r.Context(), req.RefreshToken, netutil.ClientIP(r, h.opts.TrustProxy), r.UserAgent())
	if err != nil {
		if errors.Is(err, impl.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		h.internalError(w, r, "refresh", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil || dto.Validate(req) != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	if err := h.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		if errors.Is(err, impl.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		h.internalError(w, r, "logout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ctxKey struct{}

// requireAccess admits requests carrying a valid bearer access token and
// stores the caller's user id on the context.
func (h *handlers) requireAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		userID, err := h.tokens.VerifyAccess(r.Context(), strings.TrimSpace(raw))
		if err != nil {
			if errors.Is(err, impl.ErrInvalidToken) {
				writeError(w, http.StatusUnauthorized, "invalid access token")
				return
			}
			h.internalError(w, r, "verify access", err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, userID)))
	})
}

func (h *handlers) setTwoFactor(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(ctxKey{}).(domain.UserID)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	var req dto.TwoFactorSettingsRequest
	if err := decodeJSON(w, r, &req); err != nil || dto.Validate(req) != nil {
		writeError(w, http.StatusBadRequest, domain.OutcomeInvalidFields.Message())
		return
	}
	if err := h.auth.SetTwoFactor(r.Context(), userID, *req.Enabled); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "Account not found!")
			return
		}
		h.internalError(w, r, "set two factor", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isTwoFactorEnabled": *req.Enabled})
}

func (h *handlers) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.Error("request failed",
		"op", op,
		"error", err,
		"request_id", middleware.RequestIDFromContext(r.Context()),
		"trace_id", middleware.TraceIDFromContext(r.Context()),
	)
	writeError(w, http.StatusInternalServerError, domain.OutcomeUnknownError.Message())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
