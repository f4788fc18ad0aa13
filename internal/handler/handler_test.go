package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/memberboard/memberboard-go/internal/crypto"
	"github.com/memberboard/memberboard-go/internal/handler"
	"github.com/memberboard/memberboard-go/internal/middleware"
	"github.com/memberboard/memberboard-go/internal/model"
	"github.com/memberboard/memberboard-go/internal/repository"
	"github.com/memberboard/memberboard-go/internal/service"
	"github.com/memberboard/memberboard-go/internal/session"
	"github.com/memberboard/memberboard-go/internal/view"
)

type userRepoMock struct {
	mock.Mock
}

func (m *userRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *userRepoMock) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *userRepoMock) GetByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *userRepoMock) SetMember(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type messageRepoMock struct {
	mock.Mock
}

func (m *messageRepoMock) Create(ctx context.Context, msg *model.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *messageRepoMock) ListNewestFirst(ctx context.Context) ([]model.Message, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Message), args.Error(1)
}

type memoryStore struct {
	values map[string]string
	getErr error
	delErr error
}

func (s *memoryStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	s.values[key] = value
	return nil
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memoryStore) Del(_ context.Context, key string) error {
	if s.delErr != nil {
		return s.delErr
	}
	delete(s.values, key)
	return nil
}

type testApp struct {
	router   chi.Router
	users    *userRepoMock
	messages *messageRepoMock
	sessions *session.Manager
	store    *memoryStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	render, err := view.NewRenderer()
	require.NoError(t, err)

	users := new(userRepoMock)
	messages := new(messageRepoMock)
	store := &memoryStore{values: make(map[string]string)}
	sessions := session.NewManager(store, users, "test-secret", time.Hour)

	authHandler := handler.NewAuthHandler(service.NewAuthService(users), sessions, render)
	memberHandler := handler.NewMemberHandler(service.NewMemberService(users, "open-sesame"), render)
	messageHandler := handler.NewMessageHandler(service.NewMessageService(messages), render)

	r := chi.NewRouter()
	r.Use(middleware.CurrentUser(sessions, render))
	r.NotFound(handler.NotFound(render))

	r.Get("/", messageHandler.HandleHome)
	r.Get("/sign-up", authHandler.ShowSignUp)
	r.Post("/sign-up", authHandler.HandleSignUp)
	r.Get("/login", authHandler.ShowLogin)
	r.Post("/login", authHandler.HandleLogin)
	r.Get("/logout", authHandler.HandleLogout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/join", memberHandler.ShowJoin)
		r.Post("/join", memberHandler.HandleJoin)
		r.Get("/new", messageHandler.ShowNew)
		r.Post("/new", messageHandler.HandleNew)
	})

	return &testApp{router: r, users: users, messages: messages, sessions: sessions, store: store}
}

func (app *testApp) postForm(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w
}

func (app *testApp) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w
}

func (app *testApp) loginAs(t *testing.T, user *model.User) *http.Cookie {
	t.Helper()
	token, err := app.sessions.Create(context.Background(), user)
	require.NoError(t, err)
	app.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	return &http.Cookie{Name: middleware.CookieName, Value: token}
}

func TestSignUpSuccessAutoLogin(t *testing.T) {
	app := newTestApp(t)
	app.users.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, repository.ErrUserNotFound)
	app.users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Run(func(args mock.Arguments) {
		args.Get(1).(*model.User).ID = 1
	}).Return(nil)

	w := app.postForm("/sign-up", url.Values{
		"name":             {"Ada"},
		"email":            {"a@b.com"},
		"password":         {"Abcdef1!"},
		"confirm-password": {"Abcdef1!"},
	}, nil)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.CookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "sign-up should set the session cookie")
	assert.True(t, sessionCookie.HttpOnly)
	assert.NotEmpty(t, sessionCookie.Value)
}

func TestSignUpDuplicateEmailEchoesForm(t *testing.T) {
	app := newTestApp(t)
	app.users.On("GetByEmail", mock.Anything, "a@b.com").Return(&model.User{ID: 1}, nil)

	w := app.postForm("/sign-up", url.Values{
		"name":             {"Ada"},
		"email":            {"a@b.com"},
		"password":         {"Abcdef1!"},
		"confirm-password": {"Abcdef1!"},
	}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Email already in use")
	assert.Contains(t, body, `value="a@b.com"`)
	assert.Contains(t, body, `value="Ada"`)
	app.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignUpCollectsAllFieldErrors(t *testing.T) {
	app := newTestApp(t)

	w := app.postForm("/sign-up", url.Values{}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Name is required")
	assert.Contains(t, body, "Email is required")
	assert.Contains(t, body, "Password is required")
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := crypto.HashPassword("Abcdef1!")
	require.NoError(t, err)

	app := newTestApp(t)
	app.users.On("GetByEmail", mock.Anything, "a@b.com").Return(&model.User{ID: 1, Email: "a@b.com", PasswordHash: hash}, nil)

	w := app.postForm("/login", url.Values{
		"email":    {"a@b.com"},
		"password": {"wrong"},
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Incorrect password")
}

func TestLoginUnknownEmail(t *testing.T) {
	app := newTestApp(t)
	app.users.On("GetByEmail", mock.Anything, "nobody@b.com").Return(nil, repository.ErrUserNotFound)

	w := app.postForm("/login", url.Values{
		"email":    {"nobody@b.com"},
		"password": {"Abcdef1!"},
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Incorrect email")
}

func TestLogoutClearsSession(t *testing.T) {
	app := newTestApp(t)
	cookie := app.loginAs(t, &model.User{ID: 1, Name: "Ada"})

	w := app.get("/logout", cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	// The session is gone; a privileged page now redirects to login.
	w = app.get("/new", cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestHomeHidesAuthorsFromGuests(t *testing.T) {
	app := newTestApp(t)
	app.messages.On("ListNewestFirst", mock.Anything).Return([]model.Message{
		{ID: 1, Title: "Hello", Body: "World", AuthorName: "Ada", CreatedAt: time.Now()},
	}, nil)

	w := app.get("/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Hello")
	assert.Contains(t, body, "Anonymous")
	assert.NotContains(t, body, ">Ada<")
}

func TestHomeShowsAuthorsToMembers(t *testing.T) {
	app := newTestApp(t)
	app.messages.On("ListNewestFirst", mock.Anything).Return([]model.Message{
		{ID: 1, Title: "Hello", Body: "World", AuthorName: "Ada", CreatedAt: time.Now()},
	}, nil)
	cookie := app.loginAs(t, &model.User{ID: 2, Name: "Grace", IsMember: true})

	w := app.get("/", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ada")
	assert.NotContains(t, w.Body.String(), "Anonymous")
}

func TestNewRequiresLogin(t *testing.T) {
	app := newTestApp(t)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		req := httptest.NewRequest(method, "/new", nil)
		w := httptest.NewRecorder()
		app.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	}
}

func TestPostMessage(t *testing.T) {
	app := newTestApp(t)
	app.messages.On("Create", mock.Anything, mock.AnythingOfType("*model.Message")).Return(nil)
	cookie := app.loginAs(t, &model.User{ID: 1, Name: "Ada"})

	w := app.postForm("/new", url.Values{
		"title": {"Hello"},
		"body":  {"World"},
	}, cookie)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	app.messages.AssertCalled(t, "Create", mock.Anything, mock.AnythingOfType("*model.Message"))
}

func TestPostMessageEchoesValidationErrors(t *testing.T) {
	app := newTestApp(t)
	cookie := app.loginAs(t, &model.User{ID: 1, Name: "Ada"})

	w := app.postForm("/new", url.Values{"title": {""}, "body": {""}}, cookie)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Title is required")
	assert.Contains(t, body, "Message is required")
}

func TestJoinWrongSecret(t *testing.T) {
	app := newTestApp(t)
	cookie := app.loginAs(t, &model.User{ID: 1, Name: "Ada"})

	w := app.postForm("/join", url.Values{"secret": {"wrong"}}, cookie)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "That is not the secret code")
	app.users.AssertNotCalled(t, "SetMember", mock.Anything, mock.Anything)
}

func TestJoinCorrectSecret(t *testing.T) {
	app := newTestApp(t)
	cookie := app.loginAs(t, &model.User{ID: 1, Name: "Ada"})
	app.users.On("SetMember", mock.Anything, int64(1)).Return(&model.User{ID: 1, Name: "Ada", IsMember: true}, nil)

	w := app.postForm("/join", url.Values{"secret": {"open-sesame"}}, cookie)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestSessionStoreFailureIs500(t *testing.T) {
	app := newTestApp(t)
	cookie := app.loginAs(t, &model.User{ID: 1, Name: "Ada"})

	// The store goes down between login and the next request. A
	// logged-in user must see the generic error page, not get silently
	// downgraded to anonymous and bounced to /login.
	app.store.getErr = errors.New("connection refused")

	w := app.postForm("/new", url.Values{
		"title": {"Hello"},
		"body":  {"World"},
	}, cookie)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Something went wrong")
	assert.Empty(t, w.Header().Get("Location"))
	app.messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogoutStoreFailureStillClearsCookie(t *testing.T) {
	app := newTestApp(t)
	cookie := app.loginAs(t, &model.User{ID: 1, Name: "Ada"})

	app.store.delErr = errors.New("connection refused")

	w := app.get("/logout", cookie)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Something went wrong")

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.CookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "logout should still clear the cookie")
	assert.Empty(t, sessionCookie.Value)
	assert.Negative(t, sessionCookie.MaxAge)
}

func TestUnknownRouteRenders404(t *testing.T) {
	app := newTestApp(t)

	w := app.get("/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Page not found")
}
