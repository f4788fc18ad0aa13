package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/memberboard/memberboard-go/internal/model"
	"github.com/memberboard/memberboard-go/internal/session"
	"github.com/memberboard/memberboard-go/internal/view"
)

type contextKey string

const currentUserKey contextKey = "currentUser"

// CookieName is the session cookie set on login and cleared on logout.
const CookieName = "memberboard_session"

// CurrentUser resolves the session cookie into the request context once
// per request. Requests without a valid token proceed as anonymous; a
// session store failure is a backend fault and gets the generic error
// page rather than silently downgrading a logged-in user to anonymous.
func CurrentUser(sessions *session.Manager, render *view.Renderer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if cookie, err := r.Cookie(CookieName); err == nil {
				token = cookie.Value
			}

			user, err := sessions.Resolve(r.Context(), token)
			if err != nil {
				slog.Error("resolving session", "error", err)
				data := view.Data{
					Title:  "Members Only",
					Status: http.StatusInternalServerError,
					Alert:  "Something went wrong",
				}
				if rerr := render.Render(w, http.StatusInternalServerError, "error", data); rerr != nil {
					slog.Error("rendering error page", "error", rerr)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
				return
			}
			if user != nil {
				ctx := context.WithValue(r.Context(), currentUserKey, user)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext returns the authenticated user for this request, or
// nil for anonymous.
func UserFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(currentUserKey).(*model.User)
	return user
}

// RequireUser redirects anonymous requests to the login page.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
