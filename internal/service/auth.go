package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/memberboard/memberboard-go/internal/crypto"
	"github.com/memberboard/memberboard-go/internal/model"
	"github.com/memberboard/memberboard-go/internal/repository"
)

var (
	// Login failure reasons stay distinct, matching the board's current
	// behavior of telling the user which part was wrong.
	ErrIncorrectEmail    = errors.New("Incorrect email")
	ErrIncorrectPassword = errors.New("Incorrect password")
)

// UserRepo is the slice of the user repository the auth service needs.
type UserRepo interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	SetMember(ctx context.Context, id int64) (*model.User, error)
}

// AuthService verifies credentials and registers new accounts.
type AuthService struct {
	users UserRepo
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserRepo) *AuthService {
	return &AuthService{users: users}
}

// Authenticate verifies an email/password pair against the stored hash.
// Returns ErrIncorrectEmail when no account has the email and
// ErrIncorrectPassword when the password does not match.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrIncorrectEmail
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !crypto.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrIncorrectPassword
	}

	return user, nil
}

// RegisterInput carries the sign-up form fields.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Register validates the sign-up form and creates the account. Every
// field is validated independently so the form can show all problems at
// once; a non-empty FieldErrors means no user was created. Uniqueness is
// checked twice: once during validation for a friendly field error, and
// again by the unique index at insert time, which is the authoritative
// check under concurrent sign-ups.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, FieldErrors, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Password = strings.TrimSpace(in.Password)

	taken := false
	if in.Email != "" {
		if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
			taken = true
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, fmt.Errorf("checking email: %w", err)
		}
	}

	fieldErrs := runChecks(
		func() (string, string, bool) { return checkName(in.Name) },
		func() (string, string, bool) { return checkEmail(in.Email, taken) },
		func() (string, string, bool) { return checkPassword(in.Password) },
		func() (string, string, bool) { return checkConfirmPassword(in.Password, in.ConfirmPassword) },
	)
	if fieldErrs.HasErrors() {
		return nil, fieldErrs, nil
	}

	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		IsMember:     false,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, FieldErrors{FieldEmail: "Email already in use"}, nil
		}
		return nil, nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil, nil
}
