package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoCredential 没有可用的访问令牌
	ErrNoCredential = errors.New("auth: no access token available")
	// ErrTokenExpired 访问令牌已过期
	ErrTokenExpired = errors.New("auth: access token expired")
)

// Provider 凭证提供者。通道建立和目录请求都通过它获取Bearer令牌，
// 以显式注入取代对API上下文的隐式反向引用。
type Provider interface {
	// AccessToken 返回当前可用的访问令牌
	AccessToken() (string, error)
	// IsAuthorized 返回当前是否处于已登录状态
	IsAuthorized() bool
}

// TokenProvider 基于预置令牌对的凭证提供者
type TokenProvider struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

// NewTokenProvider 创建凭证提供者
func NewTokenProvider(access, refresh string) *TokenProvider {
	return &TokenProvider{access: access, refresh: refresh}
}

// UpdateTokens 更新令牌对（登录或刷新后调用）
func (p *TokenProvider) UpdateTokens(access, refresh string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.access = access
	p.refresh = refresh
}

// Clear 清除令牌（登出时调用）
func (p *TokenProvider) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.access = ""
	p.refresh = ""
}

// AccessToken 返回访问令牌，令牌缺失或已过期时返回错误
func (p *TokenProvider) AccessToken() (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.access == "" {
		return "", ErrNoCredential
	}
	if tokenExpired(p.access) {
		return "", ErrTokenExpired
	}
	return p.access, nil
}

// IsAuthorized 返回当前是否持有未过期的令牌
func (p *TokenProvider) IsAuthorized() bool {
	_, err := p.AccessToken()
	return err == nil
}

// tokenExpired 检查JWT令牌的exp声明。
// 无法按JWT解析的令牌视为不透明令牌，交由服务端判定。
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
