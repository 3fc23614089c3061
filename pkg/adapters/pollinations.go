package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shouni/go-previz-kit/pkg/domain"
	"github.com/shouni/go-previz-kit/pkg/generator"
	"github.com/shouni/go-previz-kit/pkg/provider"
)

const (
	// PollinationsProviderName は利用者向けメッセージに出すプロバイダ名です。
	PollinationsProviderName = "Pollinations"
	// DefaultPollinationsBaseURL は Pollinations の画像エンドポイントです。
	DefaultPollinationsBaseURL = "https://image.pollinations.ai/prompt/"
)

// PollinationsAdapter はキー不要の Pollinations で画像を生成します。
type PollinationsAdapter struct {
	httpClient HTTPClient
	baseURL    string
}

// NewPollinationsAdapter は PollinationsAdapter を初期化します。
func NewPollinationsAdapter(httpClient HTTPClient) (*PollinationsAdapter, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	return &PollinationsAdapter{httpClient: httpClient, baseURL: DefaultPollinationsBaseURL}, nil
}

func (a *PollinationsAdapter) Name() string { return PollinationsProviderName }

// Generate は画像を取得して data URL に変換します。取得に失敗した場合はメッセージから分類します。
func (a *PollinationsAdapter) Generate(ctx context.Context, at generator.Attempt) (string, error) {
	if at.Kind == domain.MediaVideo {
		return "", provider.NewError(PollinationsProviderName, provider.KindInvalidInput, "video generation is not supported by this provider", nil)
	}

	report(at, 10)
	data, err := a.httpClient.FetchBytes(ctx, a.BuildURL(at))
	if err != nil {
		return "", provider.Wrap(PollinationsProviderName, err)
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", provider.NewError(PollinationsProviderName, provider.KindUnknown, fmt.Sprintf("unexpected content type %s", mimeType), nil)
	}
	return generator.EncodeDataURL(mimeType, data), nil
}

// BuildURL は試行内容から Pollinations のリクエスト URL を組み立てます。
func (a *PollinationsAdapter) BuildURL(at generator.Attempt) string {
	w, h := at.AspectRatio.Dimensions()
	q := url.Values{}
	q.Set("width", fmt.Sprint(w))
	q.Set("height", fmt.Sprint(h))
	q.Set("seed", fmt.Sprint(domain.GetSeedFromString(at.Seed)))
	q.Set("nologo", "true")
	return a.baseURL + url.PathEscape(at.Prompt) + "?" + q.Encode()
}
