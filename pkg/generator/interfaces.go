package generator

import (
	"context"
	"time"

	"github.com/shouni/go-previz-kit/pkg/domain"
)

// Attempt はバッチ内の1回分のプロバイダ呼び出しです。
type Attempt struct {
	Index       int
	Prompt      string
	Seed        string
	AspectRatio domain.AspectRatio
	Kind        domain.MediaKind
	References  []string
	// Progress はプロバイダが任意に呼び出す 0〜100 の進捗通知です。
	Progress func(percent int)
}

// MediaProvider は静止画・動画を1つ生成するライブプロバイダです。
// 成功時は取得可能な URL（data URL を含む）を返します。
type MediaProvider interface {
	Name() string
	Generate(ctx context.Context, a Attempt) (string, error)
}

// Selector はライブ生成の可否と失敗時の扱いを判断します。provider.Selector が満たします。
type Selector interface {
	ShouldPreferLive() bool
	IsFallbackEligible(err error) bool
	ClassifyError(ctx context.Context, err error, providerName string) string
}

// FallbackSource はオフライン時のストック素材を選びます。fallback.Synthesizer が満たします。
type FallbackSource interface {
	Media(kind domain.MediaKind, ar domain.AspectRatio, seed string) string
}

// ImageCacher は参照画像のバイト列をキャッシュします。go-cache の *cache.Cache が満たします。
type ImageCacher interface {
	Get(key string) (any, bool)
	Set(key string, value any, d time.Duration)
}

// HTTPClient は URL から画像を取得します。httpkit のクライアントが満たします。
type HTTPClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}
