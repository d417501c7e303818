package services

import (
	"errors"
	"fmt"
	"time"

	"citizen-portal-api/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrSessionRevoked = errors.New("session has been revoked")
)

// Claims carried inside staff JWTs. The RegisteredClaims ID is the
// session id, so individual logins can be revoked server-side.
type Claims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	RoleID int    `json:"role_id"`
	jwt.RegisteredClaims
}

// SessionService owns the staff login lifecycle: issuing tokens on
// login, validating them per request, revoking them on logout. State
// lives in the sessions table, not in package globals, so the service
// is constructed once in main and injected where needed.
type SessionService struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
}

func NewSessionService(db *gorm.DB, secret []byte, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionService{db: db, secret: secret, ttl: ttl}
}

// Issue creates a session row and returns the signed JWT for it.
func (s *SessionService) Issue(user models.User) (string, *models.Session, error) {
	now := time.Now()
	session := models.Session{
		SessionID: uuid.NewString(),
		UserID:    user.UserID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.db.Create(&session).Error; err != nil {
		return "", nil, fmt.Errorf("failed to store session: %w", err)
	}

	claims := Claims{
		UserID: user.UserID,
		Email:  user.Email,
		RoleID: user.RoleID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.SessionID,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, &session, nil
}

// Validate parses and verifies a token and checks that its session is
// still active.
func (s *SessionService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	var session models.Session
	if err := s.db.Where("session_id = ?", claims.ID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if !session.Active(time.Now()) {
		return nil, ErrSessionRevoked
	}

	return claims, nil
}

// Revoke ends a single session. Revoking an already revoked or unknown
// session is not an error.
func (s *SessionService) Revoke(sessionID string) error {
	now := time.Now()
	return s.db.Model(&models.Session{}).
		Where("session_id = ? AND revoked_at IS NULL", sessionID).
		Update("revoked_at", now).Error
}

// RevokeAll ends every active session of a user.
func (s *SessionService) RevokeAll(userID int) error {
	now := time.Now()
	return s.db.Model(&models.Session{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now).Error
}
