package service

import (
	"errors"
	"testing"

	"github.com/settle-next/internal/constants"

	"golang.org/x/crypto/bcrypt"
)

func TestChangeManagerHandsOver(t *testing.T) {
	f := setupSettlementTest(t)
	current := f.activeManager(t)

	if err := f.configSvc.ChangeManager(current.ID, "successor", "secret123"); err != nil {
		t.Fatalf("change manager failed: %v", err)
	}

	old, err := f.managerRepo.GetByID(current.ID)
	if err != nil {
		t.Fatalf("reload old manager failed: %v", err)
	}
	if old.Active {
		t.Fatalf("expected previous manager deactivated")
	}
	if old.TokenVersion != current.TokenVersion+1 {
		t.Fatalf("expected token version bump, got %d", old.TokenVersion)
	}

	next, err := f.managerRepo.GetByUsername("successor")
	if err != nil {
		t.Fatalf("load successor failed: %v", err)
	}
	if next == nil || !next.Active {
		t.Fatalf("expected successor active")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(next.PasswordHash), []byte("secret123")); err != nil {
		t.Fatalf("expected stored hash to match password: %v", err)
	}

	// 交接后旧管理员不再具备变更权限
	if err := f.configSvc.ChangeWallet(current.ID, "new-wallet"); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for retired manager, got %v", err)
	}
}

func TestChangeManagerReactivatesExisting(t *testing.T) {
	f := setupSettlementTest(t)
	current := f.activeManager(t)

	if err := f.configSvc.ChangeManager(current.ID, "old-boss", "first-pass"); err != nil {
		t.Fatalf("first handover failed: %v", err)
	}
	next, err := f.managerRepo.GetByUsername("old-boss")
	if err != nil || next == nil {
		t.Fatalf("load successor failed: %v", err)
	}
	if err := f.configSvc.ChangeManager(next.ID, "root", "second-pass"); err != nil {
		t.Fatalf("handover back failed: %v", err)
	}

	reinstated, err := f.managerRepo.GetByUsername("root")
	if err != nil || reinstated == nil {
		t.Fatalf("load reinstated manager failed: %v", err)
	}
	if !reinstated.Active {
		t.Fatalf("expected reinstated manager active")
	}
	// 卸任时 +1，复任时再 +1
	if reinstated.TokenVersion != current.TokenVersion+2 {
		t.Fatalf("expected reinstated token version bump, got %d", reinstated.TokenVersion)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(reinstated.PasswordHash), []byte("second-pass")); err != nil {
		t.Fatalf("expected reinstated hash to match new password: %v", err)
	}
}

func TestChangeManagerValidation(t *testing.T) {
	f := setupSettlementTest(t)
	current := f.activeManager(t)

	if err := f.configSvc.ChangeManager(current.ID, current.Username, "secret123"); !errors.Is(err, ErrManagerInvalid) {
		t.Fatalf("expected ErrManagerInvalid for same username, got %v", err)
	}
	if err := f.configSvc.ChangeManager(current.ID, "successor", "short"); !errors.Is(err, ErrManagerInvalid) {
		t.Fatalf("expected ErrManagerInvalid for short password, got %v", err)
	}
	if err := f.configSvc.ChangeManager(999, "successor", "secret123"); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for unknown manager, got %v", err)
	}
}

func TestChangeStableAsset(t *testing.T) {
	f := setupSettlementTest(t)
	manager := f.activeManager(t)

	if err := f.configSvc.ChangeStableAsset(manager.ID, constants.NativeAsset); !errors.Is(err, ErrAssetInvalid) {
		t.Fatalf("expected ErrAssetInvalid for native asset, got %v", err)
	}
	if err := f.configSvc.ChangeStableAsset(manager.ID, "ghost"); !errors.Is(err, ErrAssetUnknown) {
		t.Fatalf("expected ErrAssetUnknown, got %v", err)
	}

	if err := f.configSvc.ChangeStableAsset(manager.ID, testAltAsset); err != nil {
		t.Fatalf("change stable asset failed: %v", err)
	}
	value, err := f.configSvc.GetSetting(constants.SettingStableAsset)
	if err != nil {
		t.Fatalf("get setting failed: %v", err)
	}
	if value != testAltAsset {
		t.Fatalf("expected stable asset %s, got %s", testAltAsset, value)
	}
}

func TestChangeExchange(t *testing.T) {
	f := setupSettlementTest(t)
	manager := f.activeManager(t)

	if err := f.configSvc.ChangeExchange(manager.ID, "amm/v3"); !errors.Is(err, ErrExchangeUnknown) {
		t.Fatalf("expected ErrExchangeUnknown, got %v", err)
	}
	if err := f.configSvc.ChangeExchange(manager.ID, constants.ExchangeRefAMM); err != nil {
		t.Fatalf("change exchange failed: %v", err)
	}
}

func TestChangeWalletAndReferences(t *testing.T) {
	f := setupSettlementTest(t)
	manager := f.activeManager(t)

	if err := f.configSvc.ChangeWallet(manager.ID, "  "); !errors.Is(err, ErrAssetInvalid) {
		t.Fatalf("expected ErrAssetInvalid for empty wallet, got %v", err)
	}
	if err := f.configSvc.ChangeWallet(manager.ID, "treasury-2"); err != nil {
		t.Fatalf("change wallet failed: %v", err)
	}
	if err := f.configSvc.ChangeRegistry(manager.ID, "registry/v2"); err != nil {
		t.Fatalf("change registry failed: %v", err)
	}
	// 回调地址允许置空（停用回调）
	if err := f.configSvc.ChangeNotifyURL(manager.ID, ""); err != nil {
		t.Fatalf("clear notify url failed: %v", err)
	}

	public, err := f.configSvc.GetPublicConfig()
	if err != nil {
		t.Fatalf("get public config failed: %v", err)
	}
	if public.PayoutWallet != "treasury-2" {
		t.Fatalf("expected wallet treasury-2, got %s", public.PayoutWallet)
	}
	if public.RegistryRef != "registry/v2" {
		t.Fatalf("expected registry ref registry/v2, got %s", public.RegistryRef)
	}
}

func TestEnsureDefaultsDoesNotOverwrite(t *testing.T) {
	f := setupSettlementTest(t)

	f.configSvc.cfg.Settlement.StableAsset = "other-asset"
	f.configSvc.cfg.Settlement.NotifyURL = "https://example.com/hooks/pay"
	if err := f.configSvc.EnsureDefaults(); err != nil {
		t.Fatalf("ensure defaults failed: %v", err)
	}

	stable, err := f.configSvc.GetSetting(constants.SettingStableAsset)
	if err != nil {
		t.Fatalf("get setting failed: %v", err)
	}
	if stable != testStableAsset {
		t.Fatalf("expected seeded stable asset kept, got %s", stable)
	}
	notify, err := f.configSvc.GetSetting(constants.SettingNotifyURL)
	if err != nil {
		t.Fatalf("get setting failed: %v", err)
	}
	if notify != "https://example.com/hooks/pay" {
		t.Fatalf("expected missing notify url filled, got %s", notify)
	}
}
