package service

import (
	"context"
	"errors"
	"testing"

	"github.com/settle-next/internal/models"
)

func setupAuthTest(t *testing.T) (*AuthService, *settlementFixture) {
	t.Helper()
	f := setupSettlementTest(t)
	authSvc := NewAuthService(f.configSvc.cfg, f.managerRepo)
	f.configSvc.cfg.JWT.SecretKey = "test-secret-key"
	f.configSvc.cfg.JWT.ExpireHours = 1

	hash, err := authSvc.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	manager := &models.Manager{Username: "root", PasswordHash: hash, Active: true}
	if err := f.managerRepo.Create(manager); err != nil {
		t.Fatalf("create manager failed: %v", err)
	}
	return authSvc, f
}

func TestLoginIssuesToken(t *testing.T) {
	authSvc, _ := setupAuthTest(t)

	result, err := authSvc.Login(context.Background(), "root", "hunter22")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected signed token")
	}
	if result.Manager.Username != "root" {
		t.Fatalf("expected manager root, got %s", result.Manager.Username)
	}

	claims, err := authSvc.ParseJWT(result.Token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.ManagerID != result.Manager.ID {
		t.Fatalf("expected manager id %d, got %d", result.Manager.ID, claims.ManagerID)
	}
	if claims.TokenVersion != result.Manager.TokenVersion {
		t.Fatalf("expected token version %d, got %d", result.Manager.TokenVersion, claims.TokenVersion)
	}
}

func TestLoginRejections(t *testing.T) {
	authSvc, f := setupAuthTest(t)
	ctx := context.Background()

	// 账号不存在与密码错误返回同一错误
	if _, err := authSvc.Login(ctx, "root", "wrong-pass"); !errors.Is(err, ErrLoginFailed) {
		t.Fatalf("expected ErrLoginFailed for wrong password, got %v", err)
	}
	if _, err := authSvc.Login(ctx, "nobody", "hunter22"); !errors.Is(err, ErrLoginFailed) {
		t.Fatalf("expected ErrLoginFailed for unknown user, got %v", err)
	}
	if _, err := authSvc.Login(ctx, "", "hunter22"); !errors.Is(err, ErrLoginFailed) {
		t.Fatalf("expected ErrLoginFailed for empty username, got %v", err)
	}

	manager, err := f.managerRepo.GetByUsername("root")
	if err != nil || manager == nil {
		t.Fatalf("load manager failed: %v", err)
	}
	manager.Active = false
	if err := f.managerRepo.Update(manager); err != nil {
		t.Fatalf("deactivate manager failed: %v", err)
	}
	if _, err := authSvc.Login(ctx, "root", "hunter22"); !errors.Is(err, ErrLoginFailed) {
		t.Fatalf("expected ErrLoginFailed for inactive manager, got %v", err)
	}
}

func TestParseJWTRejectsForeignToken(t *testing.T) {
	authSvc, f := setupAuthTest(t)

	manager, err := f.managerRepo.GetByUsername("root")
	if err != nil || manager == nil {
		t.Fatalf("load manager failed: %v", err)
	}
	token, _, err := authSvc.GenerateJWT(manager)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}

	f.configSvc.cfg.JWT.SecretKey = "rotated-secret"
	if _, err := authSvc.ParseJWT(token); err == nil {
		t.Fatalf("expected parse failure after secret rotation")
	}
}
