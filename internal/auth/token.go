package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Discriminated verification failures. Callers branch on these instead
// of inspecting library error types.
var (
	// ErrTokenExpired means the token verified structurally but its
	// expiry timestamp has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers every other verification failure: bad
	// signature, malformed token, wrong subject, wrong algorithm.
	ErrTokenInvalid = errors.New("token invalid")
)

// Each token class is bound to its intended use via the subject claim,
// so an access token cannot be replayed as a refresh token even if the
// signing secrets were shared.
const (
	subjectAccess  = "accessApi"
	subjectRefresh = "refreshApi"
)

// Claims is the decoded payload of a verified token.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Codec issues and verifies the two token classes, each signed with a
// dedicated secret so a leaked access key cannot forge refresh tokens.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewCodec validates the signing configuration up front; a missing
// secret is a startup misconfiguration, not a per-request error.
func NewCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	if accessSecret == "" {
		return nil, errors.New("access token secret is not configured")
	}
	if refreshSecret == "" {
		return nil, errors.New("refresh token secret is not configured")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// RefreshTTL returns the configured refresh-token lifetime.
func (c *Codec) RefreshTTL() time.Duration {
	return c.refreshTTL
}

// IssueAccess produces a short-lived signed token for the given user id.
func (c *Codec) IssueAccess(userID string) (string, error) {
	return c.issue(userID, subjectAccess, c.accessSecret, c.accessTTL)
}

// IssueRefresh produces a long-lived signed token for the given user id.
func (c *Codec) IssueRefresh(userID string) (string, error) {
	return c.issue(userID, subjectRefresh, c.refreshSecret, c.refreshTTL)
}

func (c *Codec) issue(userID, subject string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyAccess validates signature, expiry, and subject of an access token.
func (c *Codec) VerifyAccess(token string) (*Claims, error) {
	return verify(token, subjectAccess, c.accessSecret)
}

// VerifyRefresh validates signature, expiry, and subject of a refresh token.
func (c *Codec) VerifyRefresh(token string) (*Claims, error) {
	return verify(token, subjectRefresh, c.refreshSecret)
}

func verify(token, subject string, secret []byte) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(subject),
		jwt.WithIssuedAt(),
	)
	parsed, err := parser.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		// jwt v5 joins validation errors; a forged or misused token must
		// read as invalid even when its expiry has also passed.
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenMalformed),
			errors.Is(err, jwt.ErrTokenUnverifiable),
			errors.Is(err, jwt.ErrTokenInvalidSubject):
			return nil, ErrTokenInvalid
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenInvalid
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
