package handler

import (
	"errors"
	"net/http"

	"github.com/memberboard/memberboard-go/internal/middleware"
	"github.com/memberboard/memberboard-go/internal/service"
	"github.com/memberboard/memberboard-go/internal/view"
)

// MessageHandler serves the board itself and the posting form.
type MessageHandler struct {
	messages *service.MessageService
	render   *view.Renderer
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messages *service.MessageService, render *view.Renderer) *MessageHandler {
	return &MessageHandler{messages: messages, render: render}
}

// HandleHome handles GET /. Everyone sees the messages; only members see
// who wrote them and when.
func (h *MessageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	messages, err := h.messages.List(r.Context())
	if err != nil {
		internalError(h.render, w, r, "listing messages", err)
		return
	}

	user := middleware.UserFromContext(r.Context())
	data := view.Data{
		Title:       siteTitle,
		CurrentUser: user,
		Messages:    messages,
		ShowAuthors: user != nil && user.IsMember,
	}
	if err := h.render.Render(w, http.StatusOK, "index", data); err != nil {
		internalError(h.render, w, r, "rendering index", err)
	}
}

// ShowNew handles GET /new.
func (h *MessageHandler) ShowNew(w http.ResponseWriter, r *http.Request) {
	h.renderNew(w, r, http.StatusOK, nil, nil)
}

// HandleNew handles POST /new.
func (h *MessageHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderErrorPage(h.render, w, r, http.StatusBadRequest, "Invalid form submission")
		return
	}

	title := r.PostFormValue("title")
	body := r.PostFormValue("body")

	user := middleware.UserFromContext(r.Context())
	_, fieldErrs, err := h.messages.Post(r.Context(), user, title, body)
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		internalError(h.render, w, r, "posting message", err)
		return
	}
	if fieldErrs.HasErrors() {
		h.renderNew(w, r, http.StatusUnprocessableEntity, fieldErrs, map[string]string{
			"title": title,
			"body":  body,
		})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *MessageHandler) renderNew(w http.ResponseWriter, r *http.Request, status int, errs service.FieldErrors, form map[string]string) {
	data := view.Data{
		Title:       siteTitle,
		CurrentUser: middleware.UserFromContext(r.Context()),
		Errors:      errs,
		Form:        form,
	}
	if err := h.render.Render(w, status, "new", data); err != nil {
		internalError(h.render, w, r, "rendering new message form", err)
	}
}
