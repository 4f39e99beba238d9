// Package auth registers users, checks their credentials and resolves the
// session tokens handed out at login.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/hilthontt/chatroom/internal/domain"
	"github.com/hilthontt/chatroom/internal/infrastructure/logging"
	"golang.org/x/crypto/bcrypt"
)

const tokenBytes = 32

type RegisterInput struct {
	Name     string
	Address  string
	Username string
	Password string
}

type Options struct {
	BcryptCost int
	SessionTTL time.Duration
}

type Service struct {
	users     domain.UserRepository
	sessions  domain.SessionRepository
	logger    logging.Logger
	opts      Options
	dummyHash []byte
	now       func() time.Time
}

func NewService(
	users domain.UserRepository,
	sessions domain.SessionRepository,
	logger logging.Logger,
	opts Options,
) (*Service, error) {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}

	// compared against when the username is unknown so both login failures cost the same
	dummy, err := bcrypt.GenerateFromPassword([]byte("chatroom-dummy-password"), opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &Service{
		users:     users,
		sessions:  sessions,
		logger:    logger,
		opts:      opts,
		dummyHash: dummy,
		now:       time.Now,
	}, nil
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if err := domain.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := domain.NewUser(in.Name, in.Address, in.Username, string(hash))
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByUsername(ctx, user.Username); err == nil {
		return nil, domain.ErrDuplicateUsername
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info(logging.Auth, logging.Register, "user registered", map[logging.ExtraKey]any{
		logging.UserID:   created.ID,
		logging.Username: created.Username,
	})

	return created, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	username = domain.NormalizeUsername(username)

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		s.logFailedLogin(username)
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logFailedLogin(username)
		return nil, domain.ErrInvalidCredentials
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	session := domain.NewSession(token, user.ID, s.opts.SessionTTL)
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info(logging.Auth, logging.Login, "user logged in", map[logging.ExtraKey]any{
		logging.UserID:   user.ID,
		logging.Username: user.Username,
	})

	return session, nil
}

func (s *Service) logFailedLogin(username string) {
	s.logger.Warn(logging.Auth, logging.Login, "login rejected", map[logging.ExtraKey]any{
		logging.Username: username,
	})
}

// Logout drops the session behind token. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := s.sessions.Delete(ctx, token); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	s.logger.Debug(logging.Auth, logging.Logout, "session destroyed", nil)
	return nil
}

func (s *Service) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}

	if session.IsExpired(s.now()) {
		_ = s.sessions.Delete(ctx, token)
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}

	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	update, err := update.Normalize()
	if err != nil {
		return nil, err
	}

	if update.IsEmpty() {
		return s.users.GetByID(ctx, userID)
	}

	user, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		return nil, err
	}

	s.logger.Info(logging.Auth, logging.ProfileUpdate, "profile updated", map[logging.ExtraKey]any{
		logging.UserID: user.ID,
	})

	return user, nil
}

func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
