package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/memberboard/memberboard-go/internal/model"
)

// MessageRepo is the slice of the message repository the service needs.
type MessageRepo interface {
	Create(ctx context.Context, msg *model.Message) error
	ListNewestFirst(ctx context.Context) ([]model.Message, error)
}

// MessageService handles posting and listing board messages.
type MessageService struct {
	messages MessageRepo
}

// NewMessageService creates a new MessageService.
func NewMessageService(messages MessageRepo) *MessageService {
	return &MessageService{messages: messages}
}

// CanPost reports whether the identity may create messages. Any
// authenticated user may post; membership only controls whether authors
// are shown on the board, not who can write to it.
func CanPost(user *model.User) bool {
	return user != nil
}

// Post validates and creates a message authored by the user. Anonymous
// callers get ErrUnauthenticated; field problems come back in
// FieldErrors with nothing written.
func (s *MessageService) Post(ctx context.Context, user *model.User, title, body string) (*model.Message, FieldErrors, error) {
	if !CanPost(user) {
		return nil, nil, ErrUnauthenticated
	}

	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)

	fieldErrs := runChecks(
		func() (string, string, bool) { return checkTitle(title) },
		func() (string, string, bool) { return checkBody(body) },
	)
	if fieldErrs.HasErrors() {
		return nil, fieldErrs, nil
	}

	msg := &model.Message{
		Title:    title,
		Body:     body,
		AuthorID: user.ID,
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, nil, fmt.Errorf("creating message: %w", err)
	}

	return msg, nil, nil
}

// List returns all messages, newest first.
func (s *MessageService) List(ctx context.Context) ([]model.Message, error) {
	messages, err := s.messages.ListNewestFirst(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return messages, nil
}
