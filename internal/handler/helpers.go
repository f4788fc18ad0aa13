package handler

import (
	"log/slog"
	"net/http"

	"github.com/memberboard/memberboard-go/internal/middleware"
	"github.com/memberboard/memberboard-go/internal/view"
)

const siteTitle = "Members Only"

// renderErrorPage shows the generic error view. Internal detail is
// logged, never rendered.
func renderErrorPage(render *view.Renderer, w http.ResponseWriter, r *http.Request, status int, message string) {
	data := view.Data{
		Title:       siteTitle,
		CurrentUser: middleware.UserFromContext(r.Context()),
		Status:      status,
		Alert:       message,
	}
	if err := render.Render(w, status, "error", data); err != nil {
		slog.Error("rendering error page", "error", err)
		http.Error(w, http.StatusText(status), status)
	}
}

func internalError(render *view.Renderer, w http.ResponseWriter, r *http.Request, context string, err error) {
	slog.Error(context, "error", err)
	renderErrorPage(render, w, r, http.StatusInternalServerError, "Something went wrong")
}

// NotFound renders the 404 page for unknown routes.
func NotFound(render *view.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderErrorPage(render, w, r, http.StatusNotFound, "Page not found")
	}
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
