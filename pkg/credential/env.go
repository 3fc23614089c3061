package credential

import (
	"context"
	"strings"
	"sync"
)

// EnvCredential は環境変数から渡されるだけで永続化しないプロバイダのキーです。
// Gemini 以外の画像プロバイダごとに1つ持ち、拒否されても他のプロバイダのキーには影響しません。
type EnvCredential struct {
	mu       sync.RWMutex
	key      string
	keyless  bool
	rejected string
}

// NewEnvCredential はキーが必要なプロバイダ用の EnvCredential を返します。
func NewEnvCredential(key string) *EnvCredential {
	return &EnvCredential{key: strings.TrimSpace(key)}
}

// Keyless はキー不要のプロバイダ用に、常に利用可能な EnvCredential を返します。
func Keyless() *EnvCredential {
	return &EnvCredential{keyless: true}
}

// HasKey はキー不要のプロバイダか、キーが残っていれば true を返します。
func (c *EnvCredential) HasKey() bool {
	if c.keyless {
		return true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.key != ""
}

// Invalidate はメモリ上のキーを破棄します。キー不要のプロバイダでは何もしません。
func (c *EnvCredential) Invalidate(_ context.Context, reason string) error {
	if c.keyless {
		return nil
	}
	c.mu.Lock()
	c.key = ""
	c.rejected = reason
	c.mu.Unlock()
	return nil
}

// Rejection は最後に拒否された理由を返します。
func (c *EnvCredential) Rejection() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rejected
}
