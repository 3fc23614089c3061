package credential

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// StorageKey は上書きされた API キーを保存するキーです。
const StorageKey = "previz:gemini_api_key"

// EventKind は認証情報の変更種別です。
type EventKind int

const (
	// EventUpdated はキーが設定または上書きされたことを示します。
	EventUpdated EventKind = iota
	// EventCleared は利用者がキーを削除したことを示します。
	EventCleared
	// EventInvalid はプロバイダがキーを拒否し、ストアが自動で破棄したことを示します。
	EventInvalid
)

func (k EventKind) String() string {
	switch k {
	case EventUpdated:
		return "updated"
	case EventCleared:
		return "cleared"
	case EventInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event は購読者に通知される変更内容です。
type Event struct {
	Kind   EventKind
	Reason string
}

// Listener は変更通知を受け取る関数です。
type Listener func(Event)

// Store はアプリケーションのルートが所有する、購読可能な API キーの保持者です。
// 読み取りは多数、書き込みは設定操作とキー無効化の副作用だけです。
type Store struct {
	mu        sync.RWMutex
	apiKey    string
	kv        KVStore
	listeners map[int]Listener
	nextID    int
}

// NewStore は Store を初期化します。
func NewStore(kv KVStore) (*Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv store is required")
	}
	return &Store{
		kv:        kv,
		listeners: make(map[int]Listener),
	}, nil
}

// Load は起動時のキーを決定します。永続化された上書きキーがあればそれを、なければ envKey を使います。
func (s *Store) Load(ctx context.Context, envKey string) error {
	key := strings.TrimSpace(envKey)
	stored, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("保存済みキーの読み込みに失敗しました: %w", err)
	}
	if ok && strings.TrimSpace(stored) != "" {
		key = strings.TrimSpace(stored)
	}

	s.mu.Lock()
	s.apiKey = key
	s.mu.Unlock()
	return nil
}

// APIKey は現在のキーを返します。
func (s *Store) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiKey
}

// HasKey はキーが設定されているかを返します。
func (s *Store) HasKey() bool {
	return s.APIKey() != ""
}

// Set はキーを上書きして永続化し、購読者に通知します。
func (s *Store) Set(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("api key is required")
	}
	if err := s.kv.Set(ctx, StorageKey, key); err != nil {
		return fmt.Errorf("キーの保存に失敗しました: %w", err)
	}
	s.mu.Lock()
	s.apiKey = key
	s.mu.Unlock()

	s.notify(Event{Kind: EventUpdated})
	return nil
}

// Clear は利用者の操作でキーを削除します。
func (s *Store) Clear(ctx context.Context) error {
	return s.drop(ctx, Event{Kind: EventCleared})
}

// Invalidate はプロバイダに拒否されたキーを破棄し、EventInvalid を通知します。
// 永続化層の削除に失敗しても、メモリ上のキーは必ず破棄されます。
func (s *Store) Invalidate(ctx context.Context, reason string) error {
	return s.drop(ctx, Event{Kind: EventInvalid, Reason: reason})
}

func (s *Store) drop(ctx context.Context, ev Event) error {
	s.mu.Lock()
	s.apiKey = ""
	s.mu.Unlock()

	err := s.kv.Delete(ctx, StorageKey)
	if err != nil {
		slog.WarnContext(ctx, "保存済みキーの削除に失敗しました", "event", ev.Kind.String(), "error", err)
	}
	s.notify(ev)
	if err != nil {
		return fmt.Errorf("キーの削除に失敗しました: %w", err)
	}
	return nil
}

// Subscribe はリスナーを登録し、解除用の ID を返します。
func (s *Store) Subscribe(l Listener) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.listeners[s.nextID] = l
	return s.nextID
}

// Unsubscribe は Subscribe で得た ID のリスナーを解除します。未知の ID は無視されます。
func (s *Store) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners, id)
}

// notify はロックの外でリスナーを呼び出します。リスナー内から Store を操作しても構いません。
func (s *Store) notify(ev Event) {
	s.mu.RLock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.mu.RUnlock()

	for _, l := range ls {
		l(ev)
	}
}
