package generator

import (
	"sync"

	"github.com/google/uuid"
)

// RequestTracker は対象ごとに最新のリクエスト ID を覚えておき、後から届いた古い結果を見分けます。
// 実行中の呼び出しは中断せず、結果を捨てるかどうかの判断だけを提供します。
type RequestTracker struct {
	mu     sync.Mutex
	latest map[string]string
}

// NewRequestTracker は RequestTracker を初期化します。
func NewRequestTracker() *RequestTracker {
	return &RequestTracker{latest: make(map[string]string)}
}

// Begin は scope（フレーム ID など）に新しいリクエストを登録し、その ID を返します。
func (t *RequestTracker) Begin(scope string) string {
	id := uuid.NewString()
	t.mu.Lock()
	t.latest[scope] = id
	t.mu.Unlock()
	return id
}

// IsLatest は id が scope の最新リクエストかどうかを返します。
func (t *RequestTracker) IsLatest(scope, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest[scope] == id
}

// Done は id が最新のままなら scope の登録を消します。
func (t *RequestTracker) Done(scope, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.latest[scope] == id {
		delete(t.latest, scope)
	}
}
