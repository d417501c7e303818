package models

import "time"

// Session is one issued staff login token. The token id (jti) is stored
// so individual logins can be revoked before their JWT expires.
type Session struct {
	SessionID string     `gorm:"primaryKey;column:session_id" json:"session_id"`
	UserID    int        `gorm:"column:user_id" json:"user_id"`
	IssuedAt  time.Time  `gorm:"column:issued_at" json:"issued_at"`
	ExpiresAt time.Time  `gorm:"column:expires_at" json:"expires_at"`
	RevokedAt *time.Time `gorm:"column:revoked_at" json:"revoked_at,omitempty"`
}

// TableName overrides
func (Session) TableName() string {
	return "sessions"
}

// Active reports whether the session can still authenticate requests.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
