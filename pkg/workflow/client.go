package workflow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/go-previz-kit/pkg/adapters"
	"github.com/shouni/go-previz-kit/pkg/credential"
	"github.com/shouni/go-previz-kit/pkg/provider"
)

// clientFactory は API キーから Gemini クライアントを作ります。
type clientFactory func(ctx context.Context, apiKey string) (adapters.GeminiClient, error)

// newGeminiClient は gemini クライアントを初期化します。
func newGeminiClient(ctx context.Context, apiKey string) (adapters.GeminiClient, error) {
	clientConfig := gemini.Config{
		APIKey:      apiKey,
		Temperature: genai.Ptr(defaultGeminiTemperature),
	}
	client, err := gemini.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// liveClient は資格情報の変更に追従して Gemini クライアントを差し替えます。
// キーが無い間の呼び出しは Unauthorized として扱われ、フォールバックの対象になります。
type liveClient struct {
	mu      sync.RWMutex
	client  adapters.GeminiClient
	factory clientFactory
	baseCtx context.Context
	store   *credential.Store
	subID   int
}

func newLiveClient(ctx context.Context, store *credential.Store, factory clientFactory) *liveClient {
	c := &liveClient{factory: factory, baseCtx: context.WithoutCancel(ctx), store: store}
	c.rebuild(store.APIKey())
	c.subID = store.Subscribe(func(ev credential.Event) {
		if ev.Kind == credential.EventUpdated {
			c.rebuild(store.APIKey())
			return
		}
		c.rebuild("")
	})
	return c
}

// close は資格情報の購読を解除します。
func (c *liveClient) close() {
	c.store.Unsubscribe(c.subID)
}

func (c *liveClient) rebuild(apiKey string) {
	var next adapters.GeminiClient
	if apiKey != "" {
		cl, err := c.factory(c.baseCtx, apiKey)
		if err != nil {
			slog.Warn("Gemini クライアントの初期化に失敗しました", "error", err)
		} else {
			next = cl
		}
	}
	c.mu.Lock()
	c.client = next
	c.mu.Unlock()
}

func (c *liveClient) current() (adapters.GeminiClient, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.client == nil {
		return nil, provider.NewError(adapters.GeminiProviderName, provider.KindUnauthorized, "api key is not configured", nil)
	}
	return c.client, nil
}

func (c *liveClient) GenerateContent(ctx context.Context, model string, prompt string) (*gemini.Response, error) {
	cl, err := c.current()
	if err != nil {
		return nil, err
	}
	return cl.GenerateContent(ctx, model, prompt)
}

func (c *liveClient) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	cl, err := c.current()
	if err != nil {
		return nil, err
	}
	return cl.GenerateWithParts(ctx, model, parts, opts)
}
