package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-http-kit/pkg/httpkit"

	"github.com/shouni/go-previz-kit/pkg/adapters"
	"github.com/shouni/go-previz-kit/pkg/analyzer"
	"github.com/shouni/go-previz-kit/pkg/credential"
	"github.com/shouni/go-previz-kit/pkg/fallback"
	"github.com/shouni/go-previz-kit/pkg/generator"
	"github.com/shouni/go-previz-kit/pkg/project"
	"github.com/shouni/go-previz-kit/pkg/prompts"
	"github.com/shouni/go-previz-kit/pkg/provider"
	"github.com/shouni/go-previz-kit/pkg/publisher"
)

const cacheCleanupInterval = 15 * time.Minute

// Manager は、設定を基にディスパッチ層の各コンポーネントを構築・保持します。
type Manager struct {
	cfg          Config
	kv           credential.KVStore
	creds        *credential.Store
	selector     *provider.Selector
	imageSel     *provider.Selector
	imageName    string
	client       *liveClient
	orchestrator *generator.Orchestrator
	analyzer     *analyzer.Analyzer
	framePrompt  prompts.ImagePrompt
	publisher    *publisher.StoryboardPublisher
	projects     *project.PostgresStore
	tracker      *generator.RequestTracker
}

// Option は New の組み立てを差し替えます。主にテスト用です。
type Option func(*options)

type options struct {
	clientFactory clientFactory
	imageProvider generator.MediaProvider
	writer        publisher.OutputWriter
	fetcher       adapters.HTTPClient
	httpClient    *http.Client
}

// WithClientFactory は Gemini クライアントの生成方法を差し替えます。
func WithClientFactory(f func(ctx context.Context, apiKey string) (adapters.GeminiClient, error)) Option {
	return func(o *options) { o.clientFactory = f }
}

// WithImageProvider は設定で選ばれる画像プロバイダの代わりに p を使います。
// p は Gemini のキーで動くものとして扱います。
func WithImageProvider(p generator.MediaProvider) Option {
	return func(o *options) { o.imageProvider = p }
}

// WithFetcher は Pollinations が画像を取得するクライアントを差し替えます。
func WithFetcher(f adapters.HTTPClient) Option {
	return func(o *options) { o.fetcher = f }
}

// WithHTTPClient は Together.AI の呼び出しに使う HTTP クライアントを差し替えます。
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithOutputWriter は絵コンテの書き出し先を差し替えます。
func WithOutputWriter(w publisher.OutputWriter) Option {
	return func(o *options) { o.writer = w }
}

// New は設定から Manager を初期化します。
func New(ctx context.Context, cfg Config, opts ...Option) (*Manager, error) {
	o := options{clientFactory: newGeminiClient, writer: publisher.LocalWriter{}}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Manager{cfg: cfg, tracker: generator.NewRequestTracker()}
	ok := false
	defer func() {
		if !ok {
			m.Close()
		}
	}()

	if err := m.initCredentials(ctx); err != nil {
		return nil, err
	}

	sel, err := provider.NewSelector(m.creds, cfg.ForceOffline)
	if err != nil {
		return nil, fmt.Errorf("selector の初期化に失敗しました: %w", err)
	}
	m.selector = sel
	m.client = newLiveClient(ctx, m.creds, o.clientFactory)

	httpClient := httpkit.New(cfg.HTTPTimeout)
	refCache := cache.New(cfg.ReferenceTTL, cacheCleanupInterval)
	refs, err := generator.NewReferencePreparer(httpClient, refCache, cfg.ReferenceTTL)
	if err != nil {
		return nil, fmt.Errorf("参照画像の準備処理の初期化に失敗しました: %w", err)
	}

	var fetcher adapters.HTTPClient = httpClient
	if o.fetcher != nil {
		fetcher = o.fetcher
	}
	imageProvider, imageCreds := o.imageProvider, provider.Credentials(m.creds)
	if imageProvider == nil {
		imageProvider, imageCreds, err = m.buildImageProvider(fetcher, o.httpClient, refs)
		if err != nil {
			return nil, err
		}
	}
	m.imageName = imageProvider.Name()

	// 画像プロバイダは自分のキーだけを見て判定し、拒否されたときも自分のキーだけを破棄する
	m.imageSel, err = provider.NewSelector(imageCreds, cfg.ForceOffline)
	if err != nil {
		return nil, fmt.Errorf("image selector の初期化に失敗しました: %w", err)
	}

	m.orchestrator, err = generator.NewOrchestrator(m.imageSel, imageProvider, fallback.NewSynthesizer(), cfg.orchestratorConfig())
	if err != nil {
		return nil, fmt.Errorf("orchestrator の初期化に失敗しました: %w", err)
	}

	textAdapter, err := adapters.NewGeminiTextAdapter(m.client, cfg.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("テキスト生成アダプタの初期化に失敗しました: %w", err)
	}
	pb, err := prompts.NewScriptPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("ScriptPromptBuilder の新規作成に失敗しました: %w", err)
	}
	m.analyzer, err = analyzer.New(sel, textAdapter, pb)
	if err != nil {
		return nil, fmt.Errorf("analyzer の初期化に失敗しました: %w", err)
	}

	m.framePrompt = prompts.NewFramePromptBuilder(cfg.StyleSuffix)
	m.publisher, err = publisher.NewStoryboardPublisher(o.writer)
	if err != nil {
		return nil, err
	}

	if cfg.DatabaseURL != "" {
		m.projects, err = project.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
	}

	slog.InfoContext(ctx, "Manager を初期化しました",
		"image_provider", imageProvider.Name(),
		"live", sel.ShouldPreferLive(),
		"image_live", m.imageSel.ShouldPreferLive(),
		"persistent_key_store", cfg.RedisURL != "",
		"project_store", m.projects != nil)
	ok = true
	return m, nil
}

// initCredentials は鍵の保存先を選び、起動時のキーを決定します。
func (m *Manager) initCredentials(ctx context.Context) error {
	if m.cfg.RedisURL != "" {
		kv, err := credential.NewRedisKV(ctx, m.cfg.RedisURL)
		if err != nil {
			return err
		}
		m.kv = kv
	} else {
		m.kv = credential.NewMemoryKV()
	}

	store, err := credential.NewStore(m.kv)
	if err != nil {
		return err
	}
	if err := store.Load(ctx, m.cfg.GeminiAPIKey); err != nil {
		return fmt.Errorf("API キーの読み込みに失敗しました: %w", err)
	}
	m.creds = store
	return nil
}

// buildImageProvider は設定に応じた画像プロバイダと、その判定に使うキーを返します。
func (m *Manager) buildImageProvider(fetcher adapters.HTTPClient, httpClient *http.Client, refs adapters.ReferenceSource) (generator.MediaProvider, provider.Credentials, error) {
	switch m.cfg.ImageProvider {
	case "", ProviderGemini:
		p, err := adapters.NewGeminiImageAdapter(m.client, refs, m.cfg.ImageModel, m.cfg.StyleSuffix)
		return p, m.creds, err
	case ProviderPollinations:
		p, err := adapters.NewPollinationsAdapter(fetcher)
		return p, credential.Keyless(), err
	case ProviderTogether:
		p := adapters.NewTogetherAdapter(m.cfg.TogetherAPIKey, m.cfg.TogetherModel, httpClient, m.cfg.HTTPTimeout)
		return p, credential.NewEnvCredential(m.cfg.TogetherAPIKey), nil
	default:
		return nil, nil, fmt.Errorf("unknown image provider %q", m.cfg.ImageProvider)
	}
}

// Close は保持している接続を閉じます。
func (m *Manager) Close() {
	if m.client != nil {
		m.client.close()
	}
	if m.projects != nil {
		m.projects.Close()
	}
	if r, ok := m.kv.(*credential.RedisKV); ok {
		if err := r.Close(); err != nil {
			slog.Warn("Redis 接続のクローズに失敗しました", "error", err)
		}
	}
}

// Credentials は API キーのストアを返します。
func (m *Manager) Credentials() *credential.Store { return m.creds }

// Selector は Gemini のキーで判定するテキスト系のセレクタを返します。
func (m *Manager) Selector() *provider.Selector { return m.selector }

// ImageSelector は設定された画像プロバイダのキーで判定するセレクタを返します。
func (m *Manager) ImageSelector() *provider.Selector { return m.imageSel }

// ImageProviderName は使用中の画像プロバイダ名を返します。
func (m *Manager) ImageProviderName() string { return m.imageName }

// Orchestrator は生成オーケストレータを返します。
func (m *Manager) Orchestrator() *generator.Orchestrator { return m.orchestrator }

// Analyzer は脚本解析器を返します。
func (m *Manager) Analyzer() *analyzer.Analyzer { return m.analyzer }

// Publisher は絵コンテの書き出し器を返します。
func (m *Manager) Publisher() *publisher.StoryboardPublisher { return m.publisher }

// Projects はプロジェクトの保存先を返します。DATABASE_URL が未設定なら nil です。
func (m *Manager) Projects() project.Store {
	if m.projects == nil {
		return nil
	}
	return m.projects
}
