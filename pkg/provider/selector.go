package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync/atomic"
)

// Credentials は Selector が参照する認証情報の保持者です。credential.Store が満たします。
type Credentials interface {
	HasKey() bool
	Invalidate(ctx context.Context, reason string) error
}

// bracketPrefixRegex は "[GoogleGenerativeAI Error]: " や "[400 Bad Request] " のような接頭辞に一致します。
var bracketPrefixRegex = regexp.MustCompile(`^\s*(\[[^\]]*\]\s*:?\s*)+`)

// Selector は呼び出しごとにライブ生成とオフライン代替のどちらを使うかを決め、エラーを利用者向けに整えます。
// 再試行は行いません。
type Selector struct {
	creds        Credentials
	forceOffline atomic.Bool
}

// NewSelector は Selector を初期化します。
func NewSelector(creds Credentials, forceOffline bool) (*Selector, error) {
	if creds == nil {
		return nil, fmt.Errorf("credentials is required")
	}
	s := &Selector{creds: creds}
	s.forceOffline.Store(forceOffline)
	return s, nil
}

// SetForceOffline はオフライン強制フラグを切り替えます。
func (s *Selector) SetForceOffline(v bool) {
	s.forceOffline.Store(v)
}

// ShouldPreferLive はキーがあり、かつオフラインが強制されていないときに true を返します。
// キーは途中で失効しうるため、毎回ストアを読みます。
func (s *Selector) ShouldPreferLive() bool {
	return !s.forceOffline.Load() && s.creds.HasKey()
}

// IsFallbackEligible は err をストック素材で置き換えてよいかを判定します。
func (s *Selector) IsFallbackEligible(err error) bool {
	if !s.ShouldPreferLive() {
		return true
	}
	return KindOf(err).FallbackEligible()
}

// ClassifyError は err を利用者向けのメッセージに変換します。
// キーが無効と判定された場合は、保存されたキーを破棄して購読者に通知します。
func (s *Selector) ClassifyError(ctx context.Context, err error, providerName string) string {
	if err == nil {
		return ""
	}
	if providerName == "" {
		providerName = "The provider"
	}

	switch KindOf(err) {
	case KindQuota:
		return fmt.Sprintf("%s quota exceeded. Check your plan and billing details, or continue in offline mode.", providerName)
	case KindSafety:
		return fmt.Sprintf("The request was blocked by %s safety filters. Please adjust your prompt and try again.", providerName)
	case KindInvalidCredential:
		raw := rawMessage(err)
		if invErr := s.creds.Invalidate(ctx, raw); invErr != nil {
			slog.WarnContext(ctx, "無効なキーの破棄に失敗しました", "provider", providerName, "error", invErr)
		}
		slog.WarnContext(ctx, "API キーが拒否されました。保存済みのキーを破棄しました", "provider", providerName)
		return fmt.Sprintf("The %s API key is invalid or lacks access to the requested model. Please enter a valid key.", providerName)
	}
	return StripVendorPrefix(rawMessage(err))
}

// ClassifiedError は ClassifyError のメッセージを持ち、元のエラーを Unwrap で辿れるエラーを返します。
func (s *Selector) ClassifiedError(ctx context.Context, err error, providerName string) error {
	if err == nil {
		return nil
	}
	return &UserError{Message: s.ClassifyError(ctx, err, providerName), Err: err}
}

// UserError は利用者向けのメッセージと、分類の元になったエラーを併せ持ちます。
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string { return e.Message }

func (e *UserError) Unwrap() error { return e.Err }

// StripVendorPrefix はベンダー固有の角括弧の接頭辞を取り除きます。
func StripVendorPrefix(msg string) string {
	return strings.TrimSpace(bracketPrefixRegex.ReplaceAllString(msg, ""))
}

func rawMessage(err error) string {
	var pe *Error
	if errors.As(err, &pe) && pe.Message != "" {
		return pe.Message
	}
	return err.Error()
}
