package generator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shouni/go-previz-kit/pkg/domain"
)

// --- Mocks ---

type mockCredentials struct {
	mu  sync.Mutex
	key string
}

func (m *mockCredentials) HasKey() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.key != ""
}

func (m *mockCredentials) Invalidate(context.Context, string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.key = ""
	return nil
}

// mockProvider は試行番号ごとに返すエラーを切り替えられるプロバイダです。
type mockProvider struct {
	errs     map[int]error
	progress []int
	calls    atomic.Int32
	mu       sync.Mutex
	attempts []Attempt
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Generate(_ context.Context, a Attempt) (string, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.attempts = append(m.attempts, a)
	m.mu.Unlock()

	for _, p := range m.progress {
		a.Progress(p)
	}
	if err, ok := m.errs[a.Index]; ok {
		return "", err
	}
	return "https://cdn.example.com/" + a.Seed + ".png", nil
}

type mockFallback struct{}

func (mockFallback) Media(kind domain.MediaKind, ar domain.AspectRatio, seed string) string {
	return "stock://" + string(kind) + "/" + string(ar.Orientation()) + "/" + seed
}

type mockHTTPClient struct {
	data  []byte
	err   error
	calls atomic.Int32
}

func (m *mockHTTPClient) FetchBytes(context.Context, string) ([]byte, error) {
	m.calls.Add(1)
	return m.data, m.err
}

type mockCache struct {
	mu   sync.Mutex
	data map[string]any
}

func (m *mockCache) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	return val, ok
}

func (m *mockCache) Set(key string, value any, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}
