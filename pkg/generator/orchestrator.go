package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/go-previz-kit/pkg/domain"
	"github.com/shouni/go-previz-kit/pkg/provider"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	// DefaultMaxVariants は1バッチで生成する枚数の既定上限です。
	DefaultMaxVariants = 4
	// OfflineNotice はオフラインモードでストック素材を返したときの通知です。
	OfflineNotice = "Offline mode: showing a stock placeholder instead of a generated result."
)

// Config は Orchestrator の動作設定です。
type Config struct {
	MaxVariants int
	// Concurrency は同時に走らせる試行数の上限です。0 以下なら全試行を同時に開始します。
	Concurrency int
	// RateInterval は試行の開始間隔です。0 なら間隔を空けません。
	RateInterval time.Duration
}

// DefaultConfig は既定の設定を返します。
func DefaultConfig() Config {
	return Config{
		MaxVariants: DefaultMaxVariants,
	}
}

// VariantsResult は GenerateVariants の結果です。Results は試行の順番どおりに並びます。
type VariantsResult struct {
	Results     []domain.GenerationResult `json:"results"`
	WasAdjusted bool                      `json:"wasAdjusted"`
}

// Orchestrator は1件の生成要求を N 回の独立した試行に展開し、全試行の決着を待って結果を集めます。
type Orchestrator struct {
	selector    Selector
	provider    MediaProvider
	fallback    FallbackSource
	maxVariants int
	concurrency int
	limiter     *rate.Limiter
}

// NewOrchestrator は Orchestrator を初期化します。
func NewOrchestrator(sel Selector, p MediaProvider, fb FallbackSource, cfg Config) (*Orchestrator, error) {
	if sel == nil {
		return nil, fmt.Errorf("selector is required")
	}
	if p == nil {
		return nil, fmt.Errorf("media provider is required")
	}
	if fb == nil {
		return nil, fmt.Errorf("fallback source is required")
	}
	if cfg.MaxVariants <= 0 {
		cfg.MaxVariants = DefaultMaxVariants
	}

	o := &Orchestrator{
		selector:    sel,
		provider:    p,
		fallback:    fb,
		maxVariants: cfg.MaxVariants,
		concurrency: cfg.Concurrency,
	}
	if cfg.RateInterval > 0 {
		o.limiter = rate.NewLimiter(rate.Every(cfg.RateInterval), 1)
	}
	return o, nil
}

// GenerateWithMoodboard はムードボードの画像を参照に加えてから GenerateVariants を実行します。
func (o *Orchestrator) GenerateWithMoodboard(ctx context.Context, req domain.GenerationRequest, mb *domain.Moodboard, progress ProgressFunc) (VariantsResult, error) {
	refs, adjusted := CollectReferences(req.ReferenceImages, mb.TemplateURLs(), mb.SectionURLs())
	req.ReferenceImages = refs
	res, err := o.GenerateVariants(ctx, req, progress)
	if err != nil {
		return res, err
	}
	res.WasAdjusted = res.WasAdjusted || adjusted
	return res, nil
}

// GenerateVariants は req.Count 回の試行を並行に実行します。
// 入力の検証はネットワーク処理の前に同期的に行い、失敗した場合は結果を返しません。
// 個々の試行の失敗はバッチ全体を止めず、対応する位置の GenerationResult に変換されます。
func (o *Orchestrator) GenerateVariants(ctx context.Context, req domain.GenerationRequest, progress ProgressFunc) (VariantsResult, error) {
	req, adjusted, err := o.normalize(req)
	if err != nil {
		return VariantsResult{}, err
	}

	results := make([]domain.GenerationResult, req.Count)
	tracker := newProgressTracker(req.Count, progress)
	logger := slog.With("provider", o.provider.Name(), "count", req.Count, "kind", req.Kind)
	logger.InfoContext(ctx, "Starting variant generation", "live", o.selector.ShouldPreferLive())

	// 兄弟の試行をキャンセルしないよう、WithContext は使わない
	var eg errgroup.Group
	if o.concurrency > 0 {
		eg.SetLimit(o.concurrency)
	}

	startTime := time.Now()
	for i := 0; i < req.Count; i++ {
		i := i
		eg.Go(func() error {
			defer tracker.finish(i)
			results[i] = o.runAttempt(ctx, req, i, tracker)
			return nil
		})
	}
	_ = eg.Wait()

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	logger.InfoContext(ctx, "Variant generation settled", "failed", failed, "duration", time.Since(startTime).Round(time.Millisecond))

	return VariantsResult{Results: results, WasAdjusted: adjusted}, nil
}

// normalize は要求を検証し、参照画像の整理と枚数の上限適用を行います。
func (o *Orchestrator) normalize(req domain.GenerationRequest) (domain.GenerationRequest, bool, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return req, false, fmt.Errorf("prompt is required")
	}
	if req.Count < 1 {
		return req, false, fmt.Errorf("count must be at least 1, got %d", req.Count)
	}
	ar, err := domain.ParseAspectRatio(string(req.AspectRatio))
	if err != nil {
		return req, false, err
	}
	req.AspectRatio = ar

	switch req.Kind {
	case "":
		req.Kind = domain.MediaImage
	case domain.MediaImage, domain.MediaVideo:
	default:
		return req, false, fmt.Errorf("unsupported media kind %q", req.Kind)
	}

	for _, ref := range req.ReferenceImages {
		if err := ValidateReference(strings.TrimSpace(ref)); err != nil {
			return req, false, err
		}
	}
	refs, adjusted := CollectReferences(req.ReferenceImages, nil, nil)
	req.ReferenceImages = refs

	if req.Count > o.maxVariants {
		req.Count = o.maxVariants
		adjusted = true
	}
	if req.Seed == "" {
		req.Seed = req.Prompt
	}
	return req, adjusted, nil
}

// runAttempt は1回の試行を実行し、結果を GenerationResult に変換します。
func (o *Orchestrator) runAttempt(ctx context.Context, req domain.GenerationRequest, i int, tracker *progressTracker) domain.GenerationResult {
	seed := AttemptSeed(req.Seed, i)
	name := o.provider.Name()
	logger := slog.With("attempt", i+1, "provider", name)

	if !o.selector.ShouldPreferLive() {
		return o.substitute(req, seed, OfflineNotice)
	}

	var err error
	url := ""
	if o.limiter != nil {
		err = o.limiter.Wait(ctx)
	}
	if err == nil {
		tracker.report(i, 0)
		url, err = o.provider.Generate(ctx, Attempt{
			Index:       i,
			Prompt:      req.Prompt,
			Seed:        seed,
			AspectRatio: req.AspectRatio,
			Kind:        req.Kind,
			References:  req.ReferenceImages,
			Progress:    tracker.forAttempt(i),
		})
		if err == nil && url == "" {
			err = provider.NewError(name, provider.KindUnknown, "provider returned no media", nil)
		}
	}
	if err == nil {
		return domain.GenerationResult{URL: url}
	}

	if o.selector.IsFallbackEligible(err) {
		logger.WarnContext(ctx, "Attempt failed, substituting stock media", "kind", provider.KindOf(err).String(), "error", err)
		notice := fmt.Sprintf("%s is unavailable right now (%s). A stock %s was substituted.", name, provider.KindOf(err), req.Kind)
		return o.substitute(req, seed, notice)
	}

	logger.ErrorContext(ctx, "Attempt failed", "error", err)
	return domain.GenerationResult{Error: o.selector.ClassifyError(ctx, err, name)}
}

func (o *Orchestrator) substitute(req domain.GenerationRequest, seed, notice string) domain.GenerationResult {
	url := o.fallback.Media(req.Kind, req.AspectRatio, seed)
	if url == "" {
		return domain.GenerationResult{Error: "no stock media is available for this request"}
	}
	return domain.GenerationResult{URL: url, FromFallback: true, Notice: notice}
}

// AttemptSeed は要求の seed と試行番号からストック素材選択用の seed を作ります。
func AttemptSeed(seed string, index int) string {
	return fmt.Sprintf("%s#%d", seed, index)
}
