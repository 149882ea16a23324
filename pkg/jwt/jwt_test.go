package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/group-shedule/schedule-site/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret: "test-secret-key-for-unit-testing-2026",
		TokenTTL:  time.Hour,
	})
}

func TestGenerateAndParseAdminToken(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAdminToken("starosta")
	if err != nil {
		t.Fatalf("GenerateAdminToken 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}

	if claims.Login != "starosta" {
		t.Errorf("期望 Login=starosta，实际=%s", claims.Login)
	}
	if !claims.IsAdmin() {
		t.Error("期望为管理员会话")
	}
	if claims.Issuer != "schedule-site" {
		t.Errorf("期望 Issuer=schedule-site，实际=%s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Error("JTI 不应为空")
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 59*time.Minute || ttl > 61*time.Minute {
		t.Errorf("TTL 期望约 1h，实际=%v", ttl)
	}
}

func TestParseToken_Expired(t *testing.T) {
	m := newTestManager()
	m.nowFunc = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.GenerateAdminToken("starosta")
	if err != nil {
		t.Fatalf("GenerateAdminToken 失败: %v", err)
	}

	m.nowFunc = time.Now
	if _, err := m.ParseToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m := newTestManager()
	token, _ := m.GenerateAdminToken("starosta")

	other := NewManager(&config.AuthConfig{JWTSecret: "another-secret-key-0000", TokenTTL: time.Hour})
	if _, err := other.ParseToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	m := newTestManager()
	if _, err := m.ParseToken("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}
