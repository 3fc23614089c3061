package workflow

import (
	"time"

	"github.com/shouni/go-previz-kit/pkg/generator"
)

// デフォルト値の定義です。
const (
	DefaultGeminiModel   = "gemini-3-flash-preview"
	DefaultImageModel    = "gemini-3-pro-image-preview"
	DefaultImageProvider = ProviderGemini
	DefaultRateInterval  = 2 * time.Second
	DefaultConcurrency   = 2
	DefaultHTTPTimeout   = 60 * time.Second
	DefaultReferenceTTL  = generator.DefaultReferenceCacheTTL
	DefaultStyleSuffix   = "photorealistic previsualization, muted color grade, film grain, anamorphic framing"

	defaultGeminiTemperature = float32(0.7)
)

// 画像プロバイダの識別子です。
const (
	ProviderGemini       = "gemini"
	ProviderPollinations = "pollinations"
	ProviderTogether     = "together"
)

// Config は Manager が各コンポーネントを組み立てるための設定です。
type Config struct {
	// --- AI Model Settings ---
	GeminiAPIKey  string
	GeminiModel   string
	ImageModel    string
	ImageProvider string

	TogetherAPIKey string
	TogetherModel  string

	// --- Generation Settings ---
	StyleSuffix  string
	ForceOffline bool
	MaxVariants  int
	Concurrency  int
	RateInterval time.Duration

	// --- Storage Settings ---
	RedisURL     string
	DatabaseURL  string
	ReferenceTTL time.Duration

	// --- Timeout ---
	HTTPTimeout time.Duration
}

// NewConfig はデフォルト値で初期化された Config に API キーをセットして返します。
func NewConfig(apiKey string) Config {
	cfg := DefaultConfig()
	cfg.GeminiAPIKey = apiKey
	return cfg
}

// DefaultConfig は推奨されるデフォルト設定を返します。
func DefaultConfig() Config {
	return Config{
		GeminiModel:   DefaultGeminiModel,
		ImageModel:    DefaultImageModel,
		ImageProvider: DefaultImageProvider,
		StyleSuffix:   DefaultStyleSuffix,
		MaxVariants:   generator.DefaultMaxVariants,
		Concurrency:   DefaultConcurrency,
		RateInterval:  DefaultRateInterval,
		ReferenceTTL:  DefaultReferenceTTL,
		HTTPTimeout:   DefaultHTTPTimeout,
	}
}

// orchestratorConfig は生成設定を Orchestrator 用に変換します。
func (c Config) orchestratorConfig() generator.Config {
	oc := generator.DefaultConfig()
	if c.MaxVariants > 0 {
		oc.MaxVariants = c.MaxVariants
	}
	oc.Concurrency = c.Concurrency
	oc.RateInterval = c.RateInterval
	return oc
}
