package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Latacz1/notatnik-treningowy/internal/telemetry/metrics"
	"github.com/Latacz1/notatnik-treningowy/internal/telemetry/tracing"
	"github.com/Latacz1/notatnik-treningowy/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// TokenHeader carries the session token, as an alternative to "Authorization: Bearer <token>".
const TokenHeader = "X-Trainings-Token"

const identityKeepAliveInterval = 25 * time.Second

// TokenFromRequest reads the session token from the request headers.
func TokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(TokenHeader)); token != "" {
		return token
	}
	authHeader := r.Header.Get("Authorization")
	if token, found := strings.CutPrefix(authHeader, "Bearer "); found {
		return strings.TrimSpace(token)
	}
	return ""
}

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=auth_test

type authService interface {
	SignUp(ctx context.Context, creds Credentials) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	SendPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
	Identity(ctx context.Context, token string) (*User, error)
	WatchIdentity(ctx context.Context, token string) <-chan *User
}

// SignOutHook runs after a successful sign out, e.g. to close the user's open notebook.
type SignOutHook func(userID string)

type Handler struct {
	service        authService
	metricsManager *metrics.Manager
	onSignOut      []SignOutHook
}

func NewHandler(service authService, metricsManager *metrics.Manager, onSignOut ...SignOutHook) *Handler {
	return &Handler{
		service:        service,
		metricsManager: metricsManager,
		onSignOut:      onSignOut,
	}
}

// SetupRoutes registers the /a routes. Middlewares are applied by the caller on the returned subrouter.
func (h *Handler) SetupRoutes(mainRouter *mux.Router) *mux.Router {
	authRouter := mainRouter.PathPrefix("/a").Subrouter()
	authRouter.HandleFunc("/signup", h.handleSignUp).Methods("POST", "OPTIONS").Name("signup")
	authRouter.HandleFunc("/login", h.handleLogin).Methods("POST", "OPTIONS").Name("login")
	authRouter.HandleFunc("/logout", h.handleLogout).Methods("GET", "OPTIONS").Name("logout")
	authRouter.HandleFunc("/reset", h.handleSendReset).Methods("POST", "OPTIONS").Name("reset")
	authRouter.HandleFunc("/reset/confirm", h.handleResetConfirm).Methods("POST", "OPTIONS").Name("reset-confirm")
	authRouter.HandleFunc("/me", h.handleMe).Methods("GET", "OPTIONS").Name("me")
	authRouter.HandleFunc("/me/live", h.handleMeLive).Methods("GET", "OPTIONS").Name("me-live")
	return authRouter
}

func writeJSON(w http.ResponseWriter, v any, statusCode int) {
	resBytes, err := json.Marshal(v)
	if err != nil {
		log.Errorf("marshal auth response: %s", err)
		http.Error(w, "marshal response error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resBytes, statusCode)
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, map[string]string{"error": message}, statusCode)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrEmailAlreadyInUse):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrNotLogged):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrEmailRequired),
		errors.Is(err, ErrPasswordTooShort),
		errors.Is(err, ErrPasswordMismatch),
		errors.Is(err, ErrInvalidResetToken):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) countEvent(event string, err error) {
	if h.metricsManager == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "failed"
	}
	h.metricsManager.CounterAuthEvents.WithLabelValues(event, result).Inc()
}

func handleOptions(w http.ResponseWriter, r *http.Request, allow string) bool {
	if r.Method != http.MethodOptions {
		return false
	}
	w.Header().Add("Allow", allow)
	w.WriteHeader(http.StatusOK)
	return true
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return errors.New("content type not json")
	}
	return json.NewDecoder(r.Body).Decode(dst)
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.signUp")
	defer span.End()

	if handleOptions(w, r, "POST, OPTIONS") {
		return
	}

	var creds Credentials
	if err := decodeJSON(r, &creds); err != nil {
		log.Errorf("sign up, decode request: %s", err)
		writeError(w, msgGeneric, http.StatusBadRequest)
		return
	}

	session, err := h.service.SignUp(ctx, creds)
	h.countEvent("signup", err)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			log.Errorf("sign up: %s", err)
		}
		writeError(w, MessageFor(err), statusFor(err))
		return
	}

	writeJSON(w, session, http.StatusCreated)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.login")
	defer span.End()

	if handleOptions(w, r, "POST, OPTIONS") {
		return
	}

	var creds Credentials
	if err := decodeJSON(r, &creds); err != nil {
		log.Errorf("login, decode request: %s", err)
		writeError(w, msgGeneric, http.StatusBadRequest)
		return
	}

	session, err := h.service.SignIn(ctx, creds.Email, creds.Password)
	h.countEvent("login", err)
	if err != nil {
		// unknown account and wrong password look the same from outside
		if errors.Is(err, ErrUserNotFound) {
			err = ErrInvalidCredentials
		}
		if statusFor(err) == http.StatusInternalServerError {
			log.Errorf("login: %s", err)
		} else {
			log.Tracef("failed login attempt: %s", err)
		}
		writeError(w, MessageFor(err), statusFor(err))
		return
	}

	writeJSON(w, session, http.StatusOK)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.logout")
	defer span.End()

	if handleOptions(w, r, "GET, OPTIONS") {
		return
	}

	token := TokenFromRequest(r)
	user, err := h.service.Identity(ctx, token)
	if err != nil {
		h.countEvent("logout", err)
		writeError(w, MessageFor(err), statusFor(err))
		return
	}

	err = h.service.SignOut(ctx, token)
	h.countEvent("logout", err)
	if err != nil {
		log.Errorf("logout for [%s]: %s", user.ID, err)
		writeError(w, MessageFor(err), statusFor(err))
		return
	}

	for _, hook := range h.onSignOut {
		hook(user.ID)
	}

	log.Printf("logout for [%s] success", user.ID)
	writeJSON(w, map[string]string{"status": "logged-out"}, http.StatusOK)
}

func (h *Handler) handleSendReset(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.sendReset")
	defer span.End()

	if handleOptions(w, r, "POST, OPTIONS") {
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		log.Errorf("send reset, decode request: %s", err)
		writeError(w, msgGeneric, http.StatusBadRequest)
		return
	}

	err := h.service.SendPasswordReset(ctx, req.Email)
	h.countEvent("reset", err)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			log.Errorf("send reset: %s", err)
		}
		writeError(w, ResetMessageFor(err), statusFor(err))
		return
	}

	writeJSON(w, map[string]string{"message": MsgResetLinkSent}, http.StatusOK)
}

func (h *Handler) handleResetConfirm(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.resetConfirm")
	defer span.End()

	if handleOptions(w, r, "POST, OPTIONS") {
		return
	}

	var req struct {
		Token           string `json:"token"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		log.Errorf("reset confirm, decode request: %s", err)
		writeError(w, msgGeneric, http.StatusBadRequest)
		return
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		writeError(w, MessageFor(ErrPasswordMismatch), http.StatusBadRequest)
		return
	}

	err := h.service.ResetPassword(ctx, req.Token, req.Password)
	h.countEvent("reset-confirm", err)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			log.Errorf("reset confirm: %s", err)
		}
		writeError(w, ResetMessageFor(err), statusFor(err))
		return
	}

	writeJSON(w, map[string]string{"status": "password-changed"}, http.StatusOK)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.me")
	defer span.End()

	if handleOptions(w, r, "GET, OPTIONS") {
		return
	}

	user, err := h.service.Identity(ctx, TokenFromRequest(r))
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			log.Errorf("get identity: %s", err)
		}
		writeError(w, MessageFor(err), statusFor(err))
		return
	}

	writeJSON(w, user, http.StatusOK)
}

// handleMeLive streams the session identity: the user first, then null once the
// session ends (sign out on another device, expiry), after which the stream closes.
func (h *Handler) handleMeLive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if handleOptions(w, r, "GET, OPTIONS") {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	token := TokenFromRequest(r)
	if token == "" {
		writeError(w, MessageFor(ErrNotLogged), http.StatusUnauthorized)
		return
	}

	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		log.Debugf("identity live, clear write deadline: %s", err)
	}

	w.Header().Set("Content-Type", pkg.ContentType.EventStream)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepAlive := time.NewTicker(identityKeepAliveInterval)
	defer keepAlive.Stop()

	identities := h.service.WatchIdentity(ctx, token)
	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case user, ok := <-identities:
			if !ok {
				return
			}
			userJson, err := json.Marshal(user)
			if err != nil {
				log.Errorf("identity live, marshal user: %s", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: identity\ndata: %s\n\n", userJson); err != nil {
				return
			}
			flusher.Flush()
			if user == nil {
				return
			}
		}
	}
}
