package provider

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind はプロバイダ呼び出しの失敗を分類した閉じた集合です。
type Kind int

const (
	KindUnknown Kind = iota
	KindQuota
	KindRateLimit
	KindUnauthorized
	KindInvalidCredential
	KindNotFound
	KindSafety
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindQuota:
		return "quota"
	case KindRateLimit:
		return "rate_limit"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidCredential:
		return "invalid_credential"
	case KindNotFound:
		return "not_found"
	case KindSafety:
		return "safety"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// FallbackEligible はストック素材への置き換えが許される種別かどうかを返します。
func (k Kind) FallbackEligible() bool {
	switch k {
	case KindQuota, KindRateLimit, KindUnauthorized:
		return true
	}
	return false
}

// Error はアダプタが HTTP 境界で生成する分類済みエラーです。
type Error struct {
	Provider   string
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status=%d): %s", e.Provider, e.Kind, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError は分類済みエラーを作ります。
func NewError(provider string, kind Kind, message string, err error) *Error {
	return &Error{Provider: provider, Kind: kind, Message: message, Err: err}
}

// Wrap は未分類のエラーをメッセージから分類して *Error に包みます。既に *Error ならそのまま返します。
func Wrap(provider string, err error) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	return &Error{
		Provider: provider,
		Kind:     kindFromMessage(err.Error()),
		Message:  err.Error(),
		Err:      err,
	}
}

// FromHTTPStatus はステータスコードと本文から分類済みエラーを作ります。
func FromHTTPStatus(provider string, status int, body []byte) *Error {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}

	kind := kindFromMessage(msg)
	switch status {
	case http.StatusTooManyRequests:
		if kind != KindQuota {
			kind = KindRateLimit
		}
	case http.StatusUnauthorized, http.StatusForbidden:
		if kind != KindInvalidCredential {
			kind = KindUnauthorized
		}
	case http.StatusNotFound:
		if kind == KindUnknown {
			kind = KindNotFound
		}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if kind == KindUnknown {
			kind = KindInvalidInput
		}
	}

	return &Error{
		Provider:   provider,
		Kind:       kind,
		StatusCode: status,
		Message:    msg,
	}
}

// KindOf は err の分類を返します。*Error を含まない場合だけメッセージから推定します。
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return kindFromMessage(err.Error())
}

// kindFromMessage は文字列照合を行う唯一の場所です。
// 置き換え可能な種別を先に判定し、どちらにも読めるメッセージでは置き換えを優先します。
func kindFromMessage(msg string) Kind {
	m := strings.ToLower(msg)
	switch {
	case containsAny(m, "quota", "resource_exhausted"):
		return KindQuota
	case containsAny(m, "429", "rate limit"):
		return KindRateLimit
	case containsAny(m, "unauthorized", "forbidden", "api key is not configured"):
		return KindUnauthorized
	case containsAny(m, "api key not valid", "api_key_invalid", "invalid api key", "requested entity was not found"):
		return KindInvalidCredential
	case containsAny(m, "safety", "blocked"):
		return KindSafety
	case containsAny(m, "not found"):
		return KindNotFound
	}
	return KindUnknown
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
