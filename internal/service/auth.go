package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/nattawatz/blog-api/internal/auth"
	"github.com/nattawatz/blog-api/internal/models"
	"github.com/nattawatz/blog-api/internal/storage"
)

var (
	// ErrAdminNotAllowed means the email is not on the admin allow-list.
	ErrAdminNotAllowed = errors.New("email is not allowed to register as admin")
	// ErrInvalidRole means the requested role is not a supported value.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRefreshInvalid means the refresh token is unknown, revoked, or
	// fails verification.
	ErrRefreshInvalid = errors.New("invalid refresh token")
	// ErrRefreshExpired means the refresh token verified but has expired.
	ErrRefreshExpired = errors.New("refresh token expired")
)

// Session is the result of a successful registration or login.
type Session struct {
	User         models.User
	AccessToken  string
	RefreshToken string
}

// AuthService orchestrates registration, login, and refresh-token
// exchange over the credential store, token store, and token codec.
type AuthService struct {
	users       storage.UserStore
	tokens      storage.TokenStore
	codec       *auth.Codec
	adminEmails map[string]struct{}
	log         *logrus.Logger
}

// NewAuthService wires the service with its collaborators. adminEmails
// is the allow-list of addresses permitted to self-register as admin.
func NewAuthService(users storage.UserStore, tokens storage.TokenStore, codec *auth.Codec, adminEmails []string, log *logrus.Logger) *AuthService {
	allowed := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		allowed[strings.ToLower(email)] = struct{}{}
	}
	return &AuthService{
		users:       users,
		tokens:      tokens,
		codec:       codec,
		adminEmails: allowed,
		log:         log,
	}
}

// Register creates a user with a generated username and issues both
// token classes. The admin allow-list gate runs before any persistence.
func (s *AuthService) Register(ctx context.Context, email, password string, role models.Role) (Session, error) {
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return Session{}, ErrInvalidRole
	}
	if role == models.RoleAdmin {
		if _, ok := s.adminEmails[strings.ToLower(email)]; !ok {
			s.log.WithField("email", email).Warn("non-whitelisted email tried to register as admin")
			return Session{}, ErrAdminNotAllowed
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.createWithUsernameRetry(ctx, models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		return Session{}, err
	}

	session, err := s.issueSession(ctx, user)
	if err != nil {
		return Session{}, err
	}

	s.log.WithFields(logrus.Fields{
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	}).Info("user registered")
	return session, nil
}

// createWithUsernameRetry inserts the user under a generated username,
// retrying once when the collision is on the username rather than the
// email. A duplicate email is surfaced as storage.ErrAlreadyExists.
func (s *AuthService) createWithUsernameRetry(ctx context.Context, user models.User) (models.User, error) {
	for attempt := 0; attempt < 2; attempt++ {
		user.Username = auth.GenerateUsername()
		created, err := s.users.Create(ctx, user)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, storage.ErrAlreadyExists) {
			return models.User{}, fmt.Errorf("create user: %w", err)
		}
		if _, emailErr := s.users.FindByEmail(ctx, user.Email); emailErr == nil {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	return models.User{}, storage.ErrAlreadyExists
}

// Login verifies the credentials and issues both token classes.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	session, err := s.issueSession(ctx, user)
	if err != nil {
		return Session{}, err
	}

	s.log.WithFields(logrus.Fields{
		"username": user.Username,
		"email":    user.Email,
	}).Info("user logged in")
	return session, nil
}

func (s *AuthService) issueSession(ctx context.Context, user models.User) (Session, error) {
	uid := user.ID.Hex()

	accessToken, err := s.codec.IssueAccess(uid)
	if err != nil {
		return Session{}, fmt.Errorf("issue access token: %w", err)
	}
	refreshToken, err := s.codec.IssueRefresh(uid)
	if err != nil {
		return Session{}, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := s.tokens.Save(ctx, refreshToken, user.ID); err != nil {
		return Session{}, fmt.Errorf("store refresh token: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"userId": uid,
		"token":  tokenFingerprint(refreshToken),
	}).Info("refresh token created for user")

	return Session{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh exchanges a valid, non-revoked refresh token for a fresh
// access token. The store existence check runs before verification so a
// revoked token is rejected without leaking signature validity.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrRefreshInvalid
	}

	exists, err := s.tokens.Exists(ctx, refreshToken)
	if err != nil {
		return "", fmt.Errorf("check refresh token: %w", err)
	}
	if !exists {
		return "", ErrRefreshInvalid
	}

	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			return "", ErrRefreshExpired
		case errors.Is(err, auth.ErrTokenInvalid):
			return "", ErrRefreshInvalid
		default:
			return "", fmt.Errorf("verify refresh token: %w", err)
		}
	}

	accessToken, err := s.codec.IssueAccess(claims.UserID)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}
	return accessToken, nil
}

// Logout revokes the refresh token by deleting its record. Deleting an
// already-revoked token is a no-op.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.tokens.Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

// CurrentUser loads the user bound to an authenticated request.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (models.User, error) {
	return s.users.FindByID(ctx, userID)
}

// tokenFingerprint returns a short digest safe to log in place of the
// raw token value.
func tokenFingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}
