package handler

import (
	"errors"
	"net/http"

	"github.com/memberboard/memberboard-go/internal/middleware"
	"github.com/memberboard/memberboard-go/internal/service"
	"github.com/memberboard/memberboard-go/internal/session"
	"github.com/memberboard/memberboard-go/internal/view"
)

// AuthHandler serves the sign-up, login and logout pages.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *session.Manager
	render   *view.Renderer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, sessions *session.Manager, render *view.Renderer) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, render: render}
}

// ShowSignUp handles GET /sign-up.
func (h *AuthHandler) ShowSignUp(w http.ResponseWriter, r *http.Request) {
	h.renderSignUp(w, r, http.StatusOK, nil, nil)
}

// HandleSignUp handles POST /sign-up. On validation failure the form is
// re-rendered with every field error and the submitted values; on
// success the new user is logged in immediately and sent home.
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderErrorPage(h.render, w, r, http.StatusBadRequest, "Invalid form submission")
		return
	}

	input := service.RegisterInput{
		Name:            r.PostFormValue("name"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm-password"),
	}

	user, fieldErrs, err := h.auth.Register(r.Context(), input)
	if err != nil {
		internalError(h.render, w, r, "registering user", err)
		return
	}
	if fieldErrs.HasErrors() {
		form := map[string]string{
			"name":  input.Name,
			"email": input.Email,
		}
		h.renderSignUp(w, r, http.StatusUnprocessableEntity, fieldErrs, form)
		return
	}

	// The account exists even if the session cannot be established; an
	// explicit error beats a silent redirect that looks like a failure.
	token, err := h.sessions.Create(r.Context(), user)
	if err != nil {
		internalError(h.render, w, r, "creating session after sign-up", err)
		return
	}

	setSessionCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) renderSignUp(w http.ResponseWriter, r *http.Request, status int, errs service.FieldErrors, form map[string]string) {
	data := view.Data{
		Title:       siteTitle,
		CurrentUser: middleware.UserFromContext(r.Context()),
		Errors:      errs,
		Form:        form,
	}
	if err := h.render.Render(w, status, "sign-up", data); err != nil {
		internalError(h.render, w, r, "rendering sign-up", err)
	}
}

// ShowLogin handles GET /login.
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, http.StatusOK, "", nil)
}

// HandleLogin handles POST /login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderErrorPage(h.render, w, r, http.StatusBadRequest, "Invalid form submission")
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	user, err := h.auth.Authenticate(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, service.ErrIncorrectEmail) || errors.Is(err, service.ErrIncorrectPassword) {
			h.renderLogin(w, r, http.StatusUnauthorized, err.Error(), map[string]string{"email": email})
			return
		}
		internalError(h.render, w, r, "authenticating user", err)
		return
	}

	token, err := h.sessions.Create(r.Context(), user)
	if err != nil {
		internalError(h.render, w, r, "creating session after login", err)
		return
	}

	setSessionCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, alert string, form map[string]string) {
	data := view.Data{
		Title:       siteTitle,
		CurrentUser: middleware.UserFromContext(r.Context()),
		Alert:       alert,
		Form:        form,
	}
	if err := h.render.Render(w, status, "login", data); err != nil {
		internalError(h.render, w, r, "rendering login", err)
	}
}

// HandleLogout handles GET /logout. Logging out twice is harmless. The
// cookie is cleared even when the store write fails, so the client does
// not keep replaying a token the server could not invalidate.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.CookieName)
	clearSessionCookie(w)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil {
		internalError(h.render, w, r, "destroying session", err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
