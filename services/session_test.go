package services

import (
	"errors"
	"testing"
	"time"

	"citizen-portal-api/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func sessionTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Session{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSessionService_IssueAndValidate(t *testing.T) {
	svc := NewSessionService(sessionTestDB(t), []byte("secret"), time.Hour)
	user := models.User{UserID: 7, Email: "amt@stadt.example.de", RoleID: models.RoleProcessor}

	token, session, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if session.SessionID == "" {
		t.Fatal("session id not set")
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != 7 || claims.RoleID != models.RoleProcessor {
		t.Errorf("claims = %+v, want user 7 processor", claims)
	}
	if claims.ID != session.SessionID {
		t.Errorf("claims.ID = %s, want %s", claims.ID, session.SessionID)
	}
}

func TestSessionService_RejectsGarbageAndForeignTokens(t *testing.T) {
	svc := NewSessionService(sessionTestDB(t), []byte("secret"), time.Hour)

	if _, err := svc.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token error = %v, want ErrInvalidToken", err)
	}

	// Token signed with a different secret.
	other := NewSessionService(sessionTestDB(t), []byte("other-secret"), time.Hour)
	token, _, err := other.Issue(models.User{UserID: 1})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign token error = %v, want ErrInvalidToken", err)
	}
}

func TestSessionService_Revoke(t *testing.T) {
	svc := NewSessionService(sessionTestDB(t), []byte("secret"), time.Hour)

	token, session, err := svc.Issue(models.User{UserID: 1})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if err := svc.Revoke(session.SessionID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := svc.Validate(token); !errors.Is(err, ErrSessionRevoked) {
		t.Errorf("revoked token error = %v, want ErrSessionRevoked", err)
	}

	// Revoking twice is harmless.
	if err := svc.Revoke(session.SessionID); err != nil {
		t.Errorf("second Revoke: %v", err)
	}
}

func TestSessionService_RevokeAll(t *testing.T) {
	db := sessionTestDB(t)
	svc := NewSessionService(db, []byte("secret"), time.Hour)

	tokenA, _, err := svc.Issue(models.User{UserID: 1})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	tokenB, _, err := svc.Issue(models.User{UserID: 1})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	tokenOther, _, err := svc.Issue(models.User{UserID: 2})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if err := svc.RevokeAll(1); err != nil {
		t.Fatalf("RevokeAll: %v", err)
	}

	for _, token := range []string{tokenA, tokenB} {
		if _, err := svc.Validate(token); !errors.Is(err, ErrSessionRevoked) {
			t.Errorf("user 1 token still valid after RevokeAll: %v", err)
		}
	}
	if _, err := svc.Validate(tokenOther); err != nil {
		t.Errorf("user 2 token affected by RevokeAll of user 1: %v", err)
	}
}
