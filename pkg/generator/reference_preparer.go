package generator

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/gemini-image-kit/pkg/imgutil"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	// ReferenceCompressionQuality は参照画像を JPEG に再圧縮するときの品質です。
	ReferenceCompressionQuality = 75
	// DefaultReferenceCacheTTL は取得済み参照画像のキャッシュ期間です。
	DefaultReferenceCacheTTL = 1 * time.Hour

	cacheKeyReference = "ref:"
)

// Reference はプロバイダに渡せる状態に整えた参照画像です。
type Reference struct {
	Source   string
	MimeType string
	Data     []byte
}

// ReferencePreparer は参照画像の取得・圧縮・キャッシュを担当します。
// 同じ URL の同時取得は singleflight で1回にまとめます。
type ReferencePreparer struct {
	httpClient HTTPClient
	cache      ImageCacher
	cacheTTL   time.Duration
	group      singleflight.Group
}

// NewReferencePreparer は ReferencePreparer を初期化します。
func NewReferencePreparer(httpClient HTTPClient, cache ImageCacher, cacheTTL time.Duration) (*ReferencePreparer, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultReferenceCacheTTL
	}
	return &ReferencePreparer{
		httpClient: httpClient,
		cache:      cache,
		cacheTTL:   cacheTTL,
	}, nil
}

// Prepare は refs を並列に準備し、入力と同じ順序で返します。
// 読めない参照画像は入力不備として扱い、エラーを返します。
func (p *ReferencePreparer) Prepare(ctx context.Context, refs []string) ([]Reference, error) {
	out := make([]Reference, len(refs))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		i, ref := i, ref
		eg.Go(func() error {
			r, err := p.prepareOne(egCtx, ref)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *ReferencePreparer) prepareOne(ctx context.Context, ref string) (Reference, error) {
	if strings.HasPrefix(ref, "data:") {
		mimeType, data, err := DecodeDataURL(ref)
		if err != nil {
			return Reference{}, err
		}
		return Reference{Source: ref, MimeType: mimeType, Data: data}, nil
	}

	if p.cache != nil {
		if val, ok := p.cache.Get(cacheKeyReference + ref); ok {
			if r, ok := val.(Reference); ok {
				return r, nil
			}
		}
	}

	v, err, _ := p.group.Do(ref, func() (interface{}, error) {
		data, err := p.httpClient.FetchBytes(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("参照画像の取得に失敗しました (%s): %w", ref, err)
		}
		r, err := toReference(ref, data)
		if err != nil {
			return nil, err
		}
		if p.cache != nil {
			p.cache.Set(cacheKeyReference+ref, r, p.cacheTTL)
		}
		return r, nil
	})
	if err != nil {
		return Reference{}, err
	}
	return v.(Reference), nil
}

// toReference は画像であることを確認し、可能なら JPEG に圧縮します。
func toReference(src string, data []byte) (Reference, error) {
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return Reference{}, fmt.Errorf("reference %s is not an image (%s)", src, mimeType)
	}
	compressed, err := imgutil.CompressToJPEG(data, ReferenceCompressionQuality)
	if err != nil {
		slog.Debug("参照画像の圧縮をスキップしました", "source", src, "error", err)
		return Reference{Source: src, MimeType: mimeType, Data: data}, nil
	}
	return Reference{Source: src, MimeType: "image/jpeg", Data: compressed}, nil
}
