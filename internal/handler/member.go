package handler

import (
	"errors"
	"net/http"

	"github.com/memberboard/memberboard-go/internal/middleware"
	"github.com/memberboard/memberboard-go/internal/service"
	"github.com/memberboard/memberboard-go/internal/view"
)

// MemberHandler serves the membership-upgrade page.
type MemberHandler struct {
	members *service.MemberService
	render  *view.Renderer
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(members *service.MemberService, render *view.Renderer) *MemberHandler {
	return &MemberHandler{members: members, render: render}
}

// ShowJoin handles GET /join.
func (h *MemberHandler) ShowJoin(w http.ResponseWriter, r *http.Request) {
	h.renderJoin(w, r, http.StatusOK, "")
}

// HandleJoin handles POST /join.
func (h *MemberHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderErrorPage(h.render, w, r, http.StatusBadRequest, "Invalid form submission")
		return
	}

	user := middleware.UserFromContext(r.Context())
	_, err := h.members.Upgrade(r.Context(), user, r.PostFormValue("secret"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		case errors.Is(err, service.ErrIncorrectSecret):
			h.renderJoin(w, r, http.StatusUnprocessableEntity, "That is not the secret code")
		default:
			internalError(h.render, w, r, "upgrading membership", err)
		}
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *MemberHandler) renderJoin(w http.ResponseWriter, r *http.Request, status int, alert string) {
	data := view.Data{
		Title:       siteTitle,
		CurrentUser: middleware.UserFromContext(r.Context()),
		Alert:       alert,
	}
	if err := h.render.Render(w, status, "join", data); err != nil {
		internalError(h.render, w, r, "rendering join", err)
	}
}
