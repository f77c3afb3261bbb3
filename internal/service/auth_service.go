package service

import (
	"context"
	"strings"
	"time"

	"github.com/settle-next/internal/cache"
	"github.com/settle-next/internal/config"
	"github.com/settle-next/internal/models"
	"github.com/settle-next/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 管理员认证服务
type AuthService struct {
	cfg         *config.Config
	managerRepo repository.ManagerRepository
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, managerRepo repository.ManagerRepository) *AuthService {
	return &AuthService{
		cfg:         cfg,
		managerRepo: managerRepo,
	}
}

// JWTClaims JWT 声明
type JWTClaims struct {
	ManagerID    uint   `json:"manager_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Manager   *models.Manager
}

// Login 管理员登录：校验密码并签发 JWT。
// 仅当前在任的管理员可登录；账号不存在与密码错误返回同一错误。
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrLoginFailed
	}
	manager, err := s.managerRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if manager == nil || !manager.Active {
		return nil, ErrLoginFailed
	}
	if err := bcrypt.CompareHashAndPassword([]byte(manager.PasswordHash), []byte(password)); err != nil {
		return nil, ErrLoginFailed
	}

	token, expiresAt, err := s.GenerateJWT(manager)
	if err != nil {
		return nil, err
	}
	_ = cache.SetManagerAuthState(ctx, cache.BuildManagerAuthState(manager))
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Manager: manager}, nil
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// GenerateJWT 生成 JWT Token
func (s *AuthService) GenerateJWT(manager *models.Manager) (string, time.Time, error) {
	expireHours := s.cfg.JWT.ExpireHours
	if expireHours <= 0 {
		expireHours = 24
	}
	expiresAt := time.Now().Add(time.Duration(expireHours) * time.Hour)

	claims := JWTClaims{
		ManagerID:    manager.ID,
		Username:     manager.Username,
		TokenVersion: manager.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT 解析 JWT Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrLoginFailed
	}
	return claims, nil
}
