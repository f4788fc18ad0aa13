package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/memberboard/memberboard-go/internal/model"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrIncorrectSecret = errors.New("incorrect secret code")
)

// MemberService grants the membership privilege to users who know the
// shared secret code. The code is injected at construction so tests can
// substitute it; business logic never reads the environment.
type MemberService struct {
	users  UserRepo
	secret string
}

// NewMemberService creates a new MemberService.
func NewMemberService(users UserRepo, secret string) *MemberService {
	return &MemberService{users: users, secret: secret}
}

// Upgrade flips the user's membership flag when the supplied code
// matches the shared secret. Already being a member is a success, not an
// error. A wrong code never mutates anything. The comparison is
// constant-time.
func (s *MemberService) Upgrade(ctx context.Context, user *model.User, suppliedSecret string) (*model.User, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	if subtle.ConstantTimeCompare([]byte(suppliedSecret), []byte(s.secret)) != 1 {
		return nil, ErrIncorrectSecret
	}

	updated, err := s.users.SetMember(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("granting membership: %w", err)
	}

	return updated, nil
}
