package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"salescope/internal/auth"
	"salescope/internal/errors"
	"salescope/internal/models"
	"salescope/internal/observability"
	"salescope/internal/store"
)

type AuthHandlers struct {
	users      store.UserStore
	tokens     *auth.TokenManager
	bcryptCost int
	logger     *slog.Logger
}

func NewAuthHandlers(users store.UserStore, tokens *auth.TokenManager, bcryptCost int, logger *slog.Logger) *AuthHandlers {
	return &AuthHandlers{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (h *AuthHandlers) HandleRegister(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	if err := r.ParseForm(); err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "Malformed form data"), requestID)
		return
	}

	name := strings.TrimSpace(r.PostFormValue("name"))
	email := normalizeEmail(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	if err := validateRegistration(name, email, password); err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	hash, err := auth.HashPassword(password, h.bcryptCost)
	if err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Could not create account"), requestID)
		return
	}

	user := &models.User{Name: name, Email: email, PasswordHash: hash}
	if err := h.users.CreateUser(r.Context(), user); err != nil {
		if err == store.ErrDuplicateEmail {
			errors.WriteError(w, h.logger, errors.Conflict("An account with this email already exists"), requestID)
			return
		}
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Could not create account"), requestID)
		return
	}

	h.logger.Info("user registered", "user_id", user.ID, "request_id", requestID)
	h.startSession(w, r, user, requestID)
}

func (h *AuthHandlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	if err := r.ParseForm(); err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "Malformed form data"), requestID)
		return
	}

	email := normalizeEmail(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	user, err := h.users.UserByEmail(r.Context(), email)
	if err != nil {
		if err == store.ErrNotFound {
			errors.WriteError(w, h.logger, errors.Unauthorized("Invalid email or password"), requestID)
			return
		}
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Could not sign in"), requestID)
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		errors.WriteError(w, h.logger, errors.Unauthorized("Invalid email or password"), requestID)
		return
	}

	h.logger.Info("user signed in", "user_id", user.ID, "request_id", requestID)
	h.startSession(w, r, user, requestID)
}

func (h *AuthHandlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandlers) startSession(w http.ResponseWriter, r *http.Request, user *models.User, requestID string) {
	token, err := h.tokens.Issue(user.ID, user.Name)
	if err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Could not start session"), requestID)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func validateRegistration(name, email, password string) error {
	if name == "" {
		return errors.Validation("Name is required")
	}
	if len(name) > 100 {
		return errors.Validation("Name must be at most 100 characters")
	}
	if !validEmail(email) {
		return errors.Validation("A valid email address is required")
	}
	if len(password) < 8 {
		return errors.Validation("Password must be at least 8 characters")
	}
	return nil
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.Contains(domain, "@")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
