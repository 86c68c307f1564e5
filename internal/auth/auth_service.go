package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// 系统中的两种角色，写入 JWT 的 role 字段。
const (
	RoleAdmin      = "admin"
	RoleFreelancer = "freelancer"
)

// AuthService 负责签发与校验访问令牌、密码重置令牌。
// 令牌统一使用 HS256 与配置的共享密钥签名。
type AuthService struct {
	secret   []byte
	tokenTTL time.Duration
	resetTTL time.Duration
}

// TokenClaims 表示访问令牌中的业务字段，便于中间件读取用户身份。
type TokenClaims struct {
	AccountID uint   `json:"id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// ResetClaims 表示密码重置令牌中的业务字段。
// RegisteredClaims.ID (jti) 用于消费台账，防止重放。
type ResetClaims struct {
	AccountID uint   `json:"id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// NewAuthService 构造服务实例。
func NewAuthService(secret string, tokenTTL, resetTTL time.Duration) (*AuthService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if tokenTTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	if resetTTL <= 0 {
		return nil, errors.New("reset ttl must be positive")
	}
	return &AuthService{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		resetTTL: resetTTL,
	}, nil
}

// GenerateToken 为指定账号签发访问令牌。
func (s *AuthService) GenerateToken(accountID uint, role string) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		AccountID: accountID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(accountID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken 解析并验证访问令牌。
func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, errors.New("token string is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, s.keyFunc)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Role != RoleAdmin && claims.Role != RoleFreelancer {
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}

	return claims, nil
}

// GenerateResetToken 签发一次性的密码重置令牌，有效期较短。
func (s *AuthService) GenerateResetToken(accountID uint, email string) (string, error) {
	now := time.Now()
	claims := ResetClaims{
		AccountID: accountID,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(accountID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.resetTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return signed, nil
}

// ValidateResetToken 解析并验证密码重置令牌。
func (s *AuthService) ValidateResetToken(tokenString string) (*ResetClaims, error) {
	if tokenString == "" {
		return nil, errors.New("token string is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &ResetClaims{}, s.keyFunc)
	if err != nil {
		return nil, fmt.Errorf("parse reset token: %w", err)
	}

	claims, ok := token.Claims.(*ResetClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid reset token claims")
	}
	if claims.ID == "" {
		return nil, errors.New("reset token missing jti")
	}

	return claims, nil
}

func (s *AuthService) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
	}
	return s.secret, nil
}

// TokenTTL 暴露访问令牌有效期。
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// ResetTTL 暴露重置令牌有效期。
func (s *AuthService) ResetTTL() time.Duration {
	return s.resetTTL
}
