// Package auth orchestrates credential verification and the token lifecycle:
// signup, login, refresh rotation and logout.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"quizserver/internal/lib/jwt"
	sl "quizserver/internal/lib/logger"
	"quizserver/internal/lib/passhash"
	"quizserver/internal/models"
	"quizserver/internal/storage"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid refresh token")
	ErrTokenExpired       = errors.New("refresh token expired")
)

type UserStorage interface {
	SaveUser(ctx context.Context, email, name, passHash string, role models.Role) (int64, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, id int64) (models.User, error)
	AdminExists(ctx context.Context) (bool, error)
}

type TokenStorage interface {
	// ReplaceRefreshToken deletes every refresh token owned by userID and
	// stores the new one, atomically.
	ReplaceRefreshToken(ctx context.Context, userID int64, token string, createdAt, expiresAt time.Time) error
	RefreshTokenByToken(ctx context.Context, token string) (models.RefreshToken, error)
	// DeleteRefreshTokenByToken is a no-op when no such token exists.
	DeleteRefreshTokenByToken(ctx context.Context, token string) error
}

// TokenPair is one access token plus the refresh token that can renew it.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Session is the result of a successful signup or login.
type Session struct {
	TokenPair
	User models.User
}

type Auth struct {
	log        *slog.Logger
	users      UserStorage
	tokens     TokenStorage
	signer     *jwt.TokenManager
	refreshTTL time.Duration
	now        func() time.Time
}

func New(
	log *slog.Logger,
	users UserStorage,
	tokens TokenStorage,
	signer *jwt.TokenManager,
	refreshTTL time.Duration,
) *Auth {
	return &Auth{
		log:        log,
		users:      users,
		tokens:     tokens,
		signer:     signer,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// SignUp creates a new USER account and starts a session for it.
// Fails with ErrUserExists when the email is already taken.
func (a *Auth) SignUp(ctx context.Context, email, password, name string) (Session, error) {
	const op = "auth.SignUp"

	log := a.log.With(slog.String("op", op))

	passHash, err := passhash.Hash(password)
	if err != nil {
		log.Error("failed to hash password", sl.Err(err))
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	id, err := a.users.SaveUser(ctx, email, name, passHash, models.RoleUser)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists")
			return Session{}, ErrUserExists
		}

		log.Error("failed to save user", sl.Err(err))
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		ID:       id,
		Email:    email,
		Name:     name,
		PassHash: passHash,
		Role:     models.RoleUser,
	}

	session, err := a.startSession(ctx, user)
	if err != nil {
		log.Error("failed to start session", sl.Err(err))
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user signed up", slog.Int64("uid", id))

	return session, nil
}

// Login verifies the credentials and starts a fresh session. An unknown email
// and a wrong password both fail with ErrInvalidCredentials; callers cannot
// tell the two apart. Any refresh token the user already held is invalidated.
func (a *Auth) Login(ctx context.Context, email, password string) (Session, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	user, err := a.users.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return Session{}, ErrInvalidCredentials
		}

		log.Error("failed to get user", sl.Err(err))
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if !passhash.Verify(password, user.PassHash) {
		log.Warn("invalid password")
		return Session{}, ErrInvalidCredentials
	}

	session, err := a.startSession(ctx, user)
	if err != nil {
		log.Error("failed to start session", sl.Err(err))
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in", slog.Int64("uid", user.ID))

	return session, nil
}

// Refresh rotates a refresh token: the presented token is consumed and a new
// pair is issued. The owning user record is re-read, so a role change takes
// effect here. Fails with ErrInvalidToken when the token is unknown (including
// already-consumed tokens) and with ErrTokenExpired when it has expired, in
// which case the stale row is deleted.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	const op = "auth.Refresh"

	log := a.log.With(slog.String("op", op))

	rt, err := a.tokens.RefreshTokenByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrRefreshTokenNotFound) {
			log.Warn("refresh token not found")
			return TokenPair{}, ErrInvalidToken
		}

		log.Error("failed to get refresh token", sl.Err(err))
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if a.now().After(rt.ExpiresAt) {
		log.Warn("refresh token expired", slog.Int64("uid", rt.UserID))

		if err := a.tokens.DeleteRefreshTokenByToken(ctx, rt.Token); err != nil {
			log.Error("failed to delete expired refresh token", sl.Err(err))
		}

		return TokenPair{}, ErrTokenExpired
	}

	user, err := a.users.UserByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("refresh token owner no longer exists", slog.Int64("uid", rt.UserID))
			return TokenPair{}, ErrInvalidToken
		}

		log.Error("failed to load user", sl.Err(err))
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	session, err := a.startSession(ctx, user)
	if err != nil {
		log.Error("failed to rotate tokens", sl.Err(err))
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("tokens refreshed", slog.Int64("uid", user.ID))

	return session.TokenPair, nil
}

// Logout deletes the refresh token. Logging out with an unknown or
// already-deleted token is not an error. Access tokens already issued stay
// valid until their own expiry.
func (a *Auth) Logout(ctx context.Context, refreshToken string) error {
	const op = "auth.Logout"

	log := a.log.With(slog.String("op", op))

	if err := a.tokens.DeleteRefreshTokenByToken(ctx, refreshToken); err != nil {
		log.Error("failed to delete refresh token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged out")

	return nil
}

// EnsureAdmin creates the bootstrap administrator unless one already exists.
// It is safe to run on every startup.
func (a *Auth) EnsureAdmin(ctx context.Context, email, password, name string) error {
	const op = "auth.EnsureAdmin"

	log := a.log.With(slog.String("op", op))

	exists, err := a.users.AdminExists(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return nil
	}

	passHash, err := passhash.Hash(password)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	id, err := a.users.SaveUser(ctx, email, name, passHash, models.RoleAdmin)
	if err != nil {
		// Lost the race against a concurrent bootstrap; the admin is there.
		if errors.Is(err, storage.ErrUserExists) {
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("bootstrap admin created", slog.Int64("uid", id))

	return nil
}

// startSession mints an access token and replaces the user's refresh token.
func (a *Auth) startSession(ctx context.Context, user models.User) (Session, error) {
	accessToken, err := a.signer.NewToken(user)
	if err != nil {
		return Session{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := jwt.NewRefreshToken()
	if err != nil {
		return Session{}, err
	}

	now := a.now()
	if err := a.tokens.ReplaceRefreshToken(ctx, user.ID, refreshToken, now, now.Add(a.refreshTTL)); err != nil {
		return Session{}, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return Session{
		TokenPair: TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
		User: user,
	}, nil
}
