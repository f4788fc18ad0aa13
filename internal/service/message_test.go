package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/memberboard/memberboard-go/internal/model"
	"github.com/memberboard/memberboard-go/internal/service"
)

func TestCanPost(t *testing.T) {
	assert.False(t, service.CanPost(nil))
	assert.True(t, service.CanPost(&model.User{ID: 1}))
	// Posting is not gated on membership.
	assert.True(t, service.CanPost(&model.User{ID: 1, IsMember: false}))
}

func TestPostAnonymousRejected(t *testing.T) {
	repo := new(messageRepoMock)
	svc := service.NewMessageService(repo)

	msg, fieldErrs, err := svc.Post(context.Background(), nil, "Hello", "World")
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
	assert.Nil(t, msg)
	assert.Empty(t, fieldErrs)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPostSuccess(t *testing.T) {
	repo := new(messageRepoMock)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Message")).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Message).ID = 3
	}).Return(nil)

	svc := service.NewMessageService(repo)
	author := &model.User{ID: 7, Name: "Ada"}

	msg, fieldErrs, err := svc.Post(context.Background(), author, "  Hello  ", "World")
	require.NoError(t, err)
	require.Empty(t, fieldErrs)
	require.NotNil(t, msg)
	assert.Equal(t, int64(3), msg.ID)
	assert.Equal(t, "Hello", msg.Title)
	assert.Equal(t, int64(7), msg.AuthorID)
}

func TestPostValidation(t *testing.T) {
	repo := new(messageRepoMock)
	svc := service.NewMessageService(repo)
	author := &model.User{ID: 7}

	msg, fieldErrs, err := svc.Post(context.Background(), author, "", "   ")
	require.NoError(t, err)
	assert.Nil(t, msg)
	assert.Equal(t, "Title is required", fieldErrs[service.FieldTitle])
	assert.Equal(t, "Message is required", fieldErrs[service.FieldBody])
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListNewestFirst(t *testing.T) {
	repo := new(messageRepoMock)
	repo.On("ListNewestFirst", mock.Anything).Return([]model.Message{
		{ID: 2, Title: "Second"},
		{ID: 1, Title: "First"},
	}, nil)

	svc := service.NewMessageService(repo)

	messages, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, int64(2), messages[0].ID)
}
