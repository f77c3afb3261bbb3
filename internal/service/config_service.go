package service

import (
	"context"
	"strings"
	"time"

	"github.com/settle-next/internal/cache"
	"github.com/settle-next/internal/config"
	"github.com/settle-next/internal/constants"
	"github.com/settle-next/internal/logger"
	"github.com/settle-next/internal/models"
	"github.com/settle-next/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ConfigService 结算配置变更服务。
// 所有写操作仅限当前管理员，单事务内生效。
type ConfigService struct {
	cfg         *config.Config
	settingRepo repository.SettingRepository
	managerRepo repository.ManagerRepository
	tokenRepo   repository.TokenRepository
	exchanges   map[string]bool
}

// NewConfigService 创建配置服务
func NewConfigService(
	cfg *config.Config,
	settingRepo repository.SettingRepository,
	managerRepo repository.ManagerRepository,
	tokenRepo repository.TokenRepository,
	exchangeRefs []string,
) *ConfigService {
	known := make(map[string]bool, len(exchangeRefs))
	for _, ref := range exchangeRefs {
		known[ref] = true
	}
	return &ConfigService{
		cfg:         cfg,
		settingRepo: settingRepo,
		managerRepo: managerRepo,
		tokenRepo:   tokenRepo,
		exchanges:   known,
	}
}

// EnsureDefaults 用配置文件初值补齐缺失的运行时设置，已有值不覆盖。
func (s *ConfigService) EnsureDefaults() error {
	defaults := map[string]string{
		constants.SettingStableAsset:   s.cfg.Settlement.StableAsset,
		constants.SettingPayoutWallet:  s.cfg.Settlement.PayoutWallet,
		constants.SettingEngineAccount: s.cfg.Settlement.EngineAccount,
		constants.SettingExchangeRef:   constants.ExchangeRefAMM,
		constants.SettingNotifyURL:     s.cfg.Settlement.NotifyURL,
	}
	for key, value := range defaults {
		if strings.TrimSpace(value) == "" {
			continue
		}
		current, err := s.settingRepo.Get(key)
		if err != nil {
			return err
		}
		if current != "" {
			continue
		}
		if err := s.settingRepo.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

// ChangeManager 交接管理权：停用当前管理员并使其令牌失效，
// 新管理员不存在时创建，存在时重新激活。单事务原子完成。
func (s *ConfigService) ChangeManager(managerID uint, username, password string) error {
	if _, err := requireManager(s.managerRepo, managerID); err != nil {
		return err
	}
	username = strings.TrimSpace(username)
	if username == "" || len(password) < 6 {
		return ErrManagerInvalid
	}

	var oldID uint
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		managerRepo := s.managerRepo.WithTx(tx)

		current, err := managerRepo.GetByID(managerID)
		if err != nil {
			return err
		}
		if current == nil || !current.Active {
			return ErrNotAuthorized
		}
		if current.Username == username {
			return ErrManagerInvalid
		}

		current.Active = false
		current.TokenVersion++
		if err := managerRepo.Update(current); err != nil {
			return err
		}
		oldID = current.ID

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		next, err := managerRepo.GetByUsername(username)
		if err != nil {
			return err
		}
		if next == nil {
			return managerRepo.Create(&models.Manager{
				Username:     username,
				PasswordHash: string(hash),
				Active:       true,
			})
		}
		next.PasswordHash = string(hash)
		next.Active = true
		next.TokenVersion++
		return managerRepo.Update(next)
	})
	if err != nil {
		return err
	}

	// 旧管理员的已签发令牌即刻失效
	if err := cache.DelManagerAuthState(context.Background(), oldID); err != nil {
		logger.Warnw("manager_auth_state_evict_failed", "manager_id", oldID, "error", err)
	}
	logger.Infow("manager_changed", "old_manager_id", oldID, "new_username", username)
	return nil
}

// ChangeWallet 更换收款钱包（不迁移既有余额）
func (s *ConfigService) ChangeWallet(managerID uint, wallet string) error {
	if _, err := requireManager(s.managerRepo, managerID); err != nil {
		return err
	}
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return ErrAssetInvalid
	}
	if err := s.settingRepo.Set(constants.SettingPayoutWallet, wallet); err != nil {
		return err
	}
	logger.Infow("payout_wallet_changed", "manager_id", managerID, "wallet", wallet)
	return nil
}

// ChangeStableAsset 更换稳定记账资产。
// 必须为已登记代币且不得为原生币；既有台账记录保留原资产不变。
func (s *ConfigService) ChangeStableAsset(managerID uint, asset string) error {
	if _, err := requireManager(s.managerRepo, managerID); err != nil {
		return err
	}
	asset = strings.TrimSpace(asset)
	if asset == "" || asset == constants.NativeAsset {
		return ErrAssetInvalid
	}
	token, err := s.tokenRepo.GetByAddress(asset)
	if err != nil {
		return err
	}
	if token == nil {
		return ErrAssetUnknown
	}
	if err := s.settingRepo.Set(constants.SettingStableAsset, asset); err != nil {
		return err
	}
	logger.Infow("stable_asset_changed", "manager_id", managerID, "asset", asset, "symbol", token.Symbol)
	return nil
}

// ChangeExchange 更换兑换实现引用，仅允许已注册的实现
func (s *ConfigService) ChangeExchange(managerID uint, ref string) error {
	if _, err := requireManager(s.managerRepo, managerID); err != nil {
		return err
	}
	ref = strings.TrimSpace(ref)
	if !s.exchanges[ref] {
		return ErrExchangeUnknown
	}
	if err := s.settingRepo.Set(constants.SettingExchangeRef, ref); err != nil {
		return err
	}
	logger.Infow("exchange_changed", "manager_id", managerID, "exchange_ref", ref)
	return nil
}

// ChangeRegistry 更换商户名录引用
func (s *ConfigService) ChangeRegistry(managerID uint, ref string) error {
	if _, err := requireManager(s.managerRepo, managerID); err != nil {
		return err
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ErrAssetInvalid
	}
	if err := s.settingRepo.Set(constants.SettingRegistryRef, ref); err != nil {
		return err
	}
	logger.Infow("registry_changed", "manager_id", managerID, "registry_ref", ref)
	return nil
}

// ChangeNotifyURL 更换支付事件回调地址（置空即停用回调）
func (s *ConfigService) ChangeNotifyURL(managerID uint, url string) error {
	if _, err := requireManager(s.managerRepo, managerID); err != nil {
		return err
	}
	if err := s.settingRepo.Set(constants.SettingNotifyURL, strings.TrimSpace(url)); err != nil {
		return err
	}
	logger.Infow("notify_url_changed", "manager_id", managerID)
	return nil
}

// PublicConfig 对外公开的只读配置视图
type PublicConfig struct {
	StableAsset  string    `json:"stable_asset"`
	PayoutWallet string    `json:"payout_wallet"`
	ExchangeRef  string    `json:"exchange_ref"`
	RegistryRef  string    `json:"registry_ref"`
	ServerTime   time.Time `json:"server_time"`
}

// GetPublicConfig 读取公开配置
func (s *ConfigService) GetPublicConfig() (*PublicConfig, error) {
	settings, err := s.settingRepo.All()
	if err != nil {
		return nil, err
	}
	return &PublicConfig{
		StableAsset:  settings[constants.SettingStableAsset],
		PayoutWallet: settings[constants.SettingPayoutWallet],
		ExchangeRef:  settings[constants.SettingExchangeRef],
		RegistryRef:  settings[constants.SettingRegistryRef],
		ServerTime:   time.Now(),
	}, nil
}

// GetSetting 读取单个运行时设置
func (s *ConfigService) GetSetting(key string) (string, error) {
	return s.settingRepo.Get(key)
}
